package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	httpx "github.com/go-arcade/ideaflow/pkg/http"
	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/metrics"
	"github.com/go-resty/resty/v2"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrDirectoryUnavailable = errors.New("user directory unavailable")
)

// User is the directory view of a person.
type User struct {
	ID          uint64 `json:"id"`
	DisplayName string `json:"fullname"`
	Email       string `json:"email"`
}

// Directory looks users up by id.
type Directory interface {
	GetByID(ctx context.Context, userID uint64) (*User, error)
}

// Conf configures the directory client
type Conf struct {
	httpx.ClientConf `mapstructure:",squash"`
	// NameCacheTTL bounds how long a display name is reused
	NameCacheTTL time.Duration `mapstructure:"nameCacheTtl"`
}

// Client calls the user service over HTTP. Every call is bounded by the
// client timeout; a caller deadline that is shorter wins.
type Client struct {
	http    *resty.Client
	timeout time.Duration
}

func NewClient(conf Conf) *Client {
	c := httpx.NewClient(conf.ClientConf)
	return &Client{http: c, timeout: c.GetClient().Timeout}
}

func (c *Client) GetByID(ctx context.Context, userID uint64) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var user User
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatUint(userID, 10)).
		SetResult(&user).
		Get("/api/users/{id}")
	if err != nil {
		metrics.DirectoryLookupTotal.WithLabelValues("unavailable").Inc()
		log.Warnw("directory lookup failed", "userId", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		metrics.DirectoryLookupTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%w: %d", ErrUserNotFound, userID)
	case resp.IsError():
		metrics.DirectoryLookupTotal.WithLabelValues("unavailable").Inc()
		log.Warnw("directory lookup failed", "userId", userID, "status", resp.StatusCode())
		return nil, fmt.Errorf("%w: status %d", ErrDirectoryUnavailable, resp.StatusCode())
	}

	metrics.DirectoryLookupTotal.WithLabelValues("found").Inc()
	if user.ID == 0 {
		user.ID = userID
	}
	user.DisplayName = strings.TrimSpace(user.DisplayName)
	return &user, nil
}

// Exists reports whether the user is known to the directory.
func Exists(ctx context.Context, d Directory, userID uint64) (bool, error) {
	_, err := d.GetByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
