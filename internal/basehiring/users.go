package basehiring

import "fmt"

const usersListPath = "/users"

// User is one account-directory entry, keyed by username in evaluations.
type User struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Title    string `json:"title"`
}

// ListUsers retrieves the account user directory. This endpoint lives on the
// Base Account API and takes its own credential.
func (c *Client) ListUsers(token string) ([]*User, error) {
	body, err := c.postForm(c.AccountURL, usersListPath, nil, token)
	if err != nil {
		return nil, err
	}

	var users []*User
	if err := decodeInto(body["users"], &users); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}

	return users, nil
}
