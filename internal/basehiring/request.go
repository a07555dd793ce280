package basehiring

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const formContentType = "application/x-www-form-urlencoded"

// postForm makes a token-authenticated form-encoded POST, the only request
// shape the Base public API accepts, and returns the decoded response body.
func (c *Client) postForm(base, path string, params url.Values, token string) (map[string]any, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", token)

	endpoint := fmt.Sprintf("%s%s", base, path)
	req, err := http.NewRequestWithContext(c.ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", formContentType)
	req.Header.Set("User-Agent", c.UserAgent)

	c.logger.Debug("make request", zap.String("url", endpoint))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("requesting %s: bad status: %s", path, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", path, err)
	}

	return body, nil
}

// decodeInto maps a loosely typed payload fragment onto target. The Base API
// is inconsistent about numbers vs strings (ids and epoch timestamps arrive
// as either), so weakly typed decoding is used throughout.
func decodeInto(raw any, target any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	return decoder.Decode(raw)
}
