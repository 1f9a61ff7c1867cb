package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"ride-booking/internal/domain/fault"
	"ride-booking/internal/domain/user"
	"ride-booking/internal/general/contracts"
	"ride-booking/internal/general/jwt"
	"ride-booking/internal/ports"
)

// HTTPUserClient validates identities against the user service. The auth
// store's wire record is mapped onto the domain user here; password hashes
// and auth attributes never leave this package.
type HTTPUserClient struct {
	baseURL string
	client  *http.Client
	tokens  *jwt.Manager
	caller  string
}

// NewHTTPUserClient constructs a user client for the given base URL.
func NewHTTPUserClient(baseURL string, timeout time.Duration, tokens *jwt.Manager, caller string) ports.UserClient {
	return &HTTPUserClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
		caller:  caller,
	}
}

// ValidateUser checks that the user exists and may book rides. A missing user
// is a negative validation, not an error; only transport failures error out.
func (c *HTTPUserClient) ValidateUser(ctx context.Context, userID string) (user.Validation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/internal/users/"+userID, nil)
	if err != nil {
		return user.Validation{}, fault.Internal("build request", err)
	}

	token, err := c.tokens.IssueServiceToken(c.caller)
	if err != nil {
		return user.Validation{}, fault.Internal("issue service token", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return user.Validation{}, fault.Remote("user service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return user.Validation{Exists: false, Valid: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return user.Validation{}, decodeFault(resp, "user service")
	}

	var record contracts.AuthUserRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return user.Validation{}, fault.Remote("decode user service response", err)
	}

	return mapAuthRecord(record), nil
}

// mapAuthRecord converts the auth store's record into the domain validation.
func mapAuthRecord(record contracts.AuthUserRecord) user.Validation {
	profile := &user.User{
		ID:        record.ID,
		CreatedAt: record.CreatedAt,
		Email:     record.Email,
		Role:      user.Role(record.Role),
		Status:    user.Status(record.Status),
	}

	valid := profile.Role.Valid() && profile.Status.Valid() && profile.IsActive()

	return user.Validation{
		Exists:  true,
		Valid:   valid,
		Profile: profile,
	}
}
