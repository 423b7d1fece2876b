package restclient

import "context"

// AuthClient groups the identity endpoints.
type AuthClient struct {
	c *Client
}

func (c *Client) Auth() AuthClient {
	return AuthClient{c: c}
}

func (a AuthClient) Login(ctx context.Context, credentials interface{}) (*AuthResponse, error) {
	var res AuthResponse
	if err := a.c.Post(ctx, "login", credentials, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a AuthClient) Register(ctx context.Context, payload interface{}) (*AuthResponse, error) {
	var res AuthResponse
	if err := a.c.Post(ctx, "register", payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout invalidates the session server side. The session store does not
// call it (local-only invalidation); it is exposed for callers that want
// the server round trip as well.
func (a AuthClient) Logout(ctx context.Context) (*Envelope, error) {
	var env Envelope
	if err := a.c.Post(ctx, "logout", nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (a AuthClient) ToggleTheme(ctx context.Context, theme string) (*Envelope, error) {
	var env Envelope
	body := map[string]string{"theme": theme}
	if err := a.c.Post(ctx, "toggle-theme", body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}
