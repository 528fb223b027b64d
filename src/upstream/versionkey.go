package upstream

import (
	"context"
	"io"
	"net/http"

	"github.com/Zillorz/svue-api/src/models"
)

// VersionKeyProvider yields the edupointkeyversion value every gateway
// call must present. Injected so tests can stub it out.
type VersionKeyProvider interface {
	VersionKey(ctx context.Context) (string, error)
}

// HTTPVersionKeyProvider asks an external key service for the current
// version key on every call, mirroring how the rest of the deployment
// obtains it.
type HTTPVersionKeyProvider struct {
	URL    string
	Client *http.Client
}

func NewHTTPVersionKeyProvider(url string, client *http.Client) *HTTPVersionKeyProvider {
	return &HTTPVersionKeyProvider{URL: url, Client: client}
}

func (p *HTTPVersionKeyProvider) VersionKey(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return "", models.ErrAccessKey
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", models.ErrAccessKey
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", models.ErrAccessKey
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", models.ErrAccessKey
	}
	return string(body), nil
}
