package ideastore

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	httpx "github.com/go-arcade/ideaflow/pkg/http"
	"github.com/go-resty/resty/v2"
)

// HTTPStore reaches an idea store running in another process.
type HTTPStore struct {
	client *resty.Client
}

type envelope[T any] struct {
	Code   int    `json:"code"`
	Detail T      `json:"detail"`
	Msg    string `json:"msg"`
}

func NewHTTPStore(conf httpx.ClientConf) *HTTPStore {
	return &HTTPStore{client: httpx.NewClient(conf)}
}

func (s *HTTPStore) SetVoteCount(ctx context.Context, ideaID uint64, count int64) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatUint(ideaID, 10)).
		SetHeader("Content-Type", "application/json").
		SetBody(strconv.FormatInt(count, 10)).
		Put("/api/ideas/{id}/voteCount")
	if err != nil {
		return fmt.Errorf("push vote count of idea %d: %w", ideaID, err)
	}
	return statusError(resp, ideaID)
}

func (s *HTTPStore) GetOwner(ctx context.Context, ideaID uint64) (uint64, error) {
	var rep envelope[uint64]
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatUint(ideaID, 10)).
		SetResult(&rep).
		Get("/api/ideas/{id}/owner")
	if err != nil {
		return 0, fmt.Errorf("get owner of idea %d: %w", ideaID, err)
	}
	if err := statusError(resp, ideaID); err != nil {
		return 0, err
	}
	return rep.Detail, nil
}

func statusError(resp *resty.Response, ideaID uint64) error {
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return fmt.Errorf("idea %d: %w", ideaID, ErrNotFound)
	case resp.IsError():
		return fmt.Errorf("idea store responded %d for idea %d", resp.StatusCode(), ideaID)
	}
	return nil
}
