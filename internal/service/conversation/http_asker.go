package conversation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samber/mo"

	"github.com/zhouzirui/loan-match/backend/internal/model/chat"
	"github.com/zhouzirui/loan-match/backend/internal/model/product"
)

// HTTPAsker implements Asker against the POST /ask endpoint.
type HTTPAsker struct {
	client *resty.Client
}

// ResponseError is returned for non-2xx replies.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ask returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("ask returned status %d: %s", e.StatusCode, e.Message)
}

type askPayload struct {
	ProductID string         `json:"productId"`
	Message   string         `json:"message"`
	History   []chat.Message `json:"history"`
}

type askReply struct {
	Answer string `json:"answer"`
	Error  string `json:"error"`
}

// NewHTTPAsker targets baseURL, e.g. http://localhost:8080.
func NewHTTPAsker(baseURL string, timeout time.Duration) *HTTPAsker {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &HTTPAsker{client: client}
}

func (a *HTTPAsker) Ask(ctx context.Context, productID, message string, history []chat.Message) (string, error) {
	if history == nil {
		history = []chat.Message{}
	}

	var reply askReply
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(askPayload{ProductID: productID, Message: message, History: history}).
		SetResult(&reply).
		SetError(&reply).
		Post("/ask")
	if err != nil {
		return "", fmt.Errorf("post /ask: %w", err)
	}

	if !resp.IsSuccess() {
		msg := reply.Answer
		if msg == "" {
			msg = reply.Error
		}
		return "", &ResponseError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return reply.Answer, nil
}

// Product fetches the selected product from GET /api/products/{id}. An unknown id yields None.
func (a *HTTPAsker) Product(ctx context.Context, id string) (mo.Option[product.Product], error) {
	var p product.Product
	resp, err := a.client.R().
		SetContext(ctx).
		SetPathParam("productID", id).
		SetResult(&p).
		Get("/api/products/{productID}")
	if err != nil {
		return mo.None[product.Product](), fmt.Errorf("get product: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return mo.None[product.Product](), nil
	case !resp.IsSuccess():
		return mo.None[product.Product](), &ResponseError{StatusCode: resp.StatusCode()}
	}
	return mo.Some(p), nil
}
