// Package upstream issues SOAP calls to the legacy StudentVue service and
// classifies their outcome: success, soft upstream error, maintenance or
// transport failure.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Zillorz/svue-api/src/models"
	"github.com/Zillorz/svue-api/src/soap"
)

const servicePath = "/Service/PXPCommunication.asmx"

// Client performs one upstream request/response cycle per Call. The
// embedded http.Client (and its connection pool) is the only process-wide
// shared resource; everything else is owned by the calling request.
type Client struct {
	HTTP     *http.Client
	Versions VersionKeyProvider
}

func NewClient(httpClient *http.Client, versions VersionKeyProvider) *Client {
	return &Client{HTTP: httpClient, Versions: versions}
}

// Call builds the envelope for the given method, posts it to the record's
// district endpoint and returns the inner result payload. Set-Cookie
// headers returned upstream replace the record's cookie wholesale; the
// caller is responsible for re-issuing a token when that happens.
func (c *Client) Call(ctx context.Context, methodName, params string, rec *models.SessionRecord) (string, error) {
	version, err := c.Versions.VersionKey(ctx)
	if err != nil {
		return "", err
	}

	body, err := soap.Encode(soap.NewRequest(rec, methodName, params))
	if err != nil {
		return "", &models.ParsingError{Cause: err}
	}

	url := fmt.Sprintf("https://%s%s", rec.DistrictHost, servicePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &models.NetworkError{Cause: err}
	}

	cookie := ""
	if rec.Cookie != nil {
		cookie = *rec.Cookie
	}
	req.Header.Set("Cookie", fmt.Sprintf(
		"%sAppSupportsSession=1; edupointkey=1; edupointkeyversion=%s", cookie, version))
	req.Header.Set("Content-Type", "text/xml")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", &models.NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	// Upstream rejects every method with 405 while under maintenance.
	if resp.StatusCode == http.StatusMethodNotAllowed {
		return "", models.ErrMaintenance
	}

	mergeCookies(resp.Header, rec)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.NetworkError{Cause: err}
	}

	inner, err := soap.Decode(string(raw))
	if err != nil {
		return "", &models.ParsingError{Cause: err}
	}

	if soap.LooksLikeError(string(raw)) {
		rt, err := soap.DecodeError(inner)
		if err != nil {
			return "", &models.ParsingError{Cause: err}
		}
		// Error messages naming a .dll are upstream internal faults; their
		// text is meaningless to clients.
		if strings.Contains(rt.ErrorMessage, ".dll") {
			return "", models.ErrUnknown
		}
		return "", &models.StudentVueError{Message: rt.ErrorMessage}
	}

	return inner, nil
}

// mergeCookies collects every Set-Cookie value, truncated to its first
// whitespace-delimited token (dropping Path=, Expires= and friends), and
// replaces the record's cookie in full when any were present. This is the
// only mechanism of session continuity across stateless requests.
func mergeCookies(header http.Header, rec *models.SessionRecord) {
	var cookies strings.Builder
	for _, value := range header.Values("Set-Cookie") {
		fields := strings.Fields(value)
		if len(fields) > 0 {
			cookies.WriteString(fields[0])
		}
		cookies.WriteString(" ")
	}

	if cookies.Len() > 0 {
		merged := cookies.String()
		rec.Cookie = &merged
	}
}
