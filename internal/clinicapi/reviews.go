package clinicapi

import "context"

// Reviews lists published patient reviews; public.
func (c *Client) Reviews(ctx context.Context) ([]Review, error) {
	var out []Review
	if err := c.get(ctx, "/api/reviews", "reviews_list", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateReview submits a review. Reviews are write-only for the portal;
// they reappear through Reviews on the public page.
func (c *Client) CreateReview(ctx context.Context, review Review) error {
	return c.post(ctx, "/api/reviews", "reviews_create", "", review, nil)
}
