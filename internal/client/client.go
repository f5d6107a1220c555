package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const locationHeader = "Location"

// ErrNoRedirection возвращается, если сервер ответил без перенаправления.
var ErrNoRedirection = errors.New("no redirection")

// RequestError описывает отказ сервера из-за ошибки в запросе (код 4xx).
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}

// ServerError описывает сбой на стороне сервера (код 5xx).
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Client представляет клиент сервиса коротких ссылок.
type Client struct {
	inner         *resty.Client
	serverAddress string
}

// Option определяет опцию настройки клиента.
type Option func(*Client)

// New создает экземпляр клиента сервиса, расположенного по адресу serverAddress.
func New(serverAddress string, options ...Option) *Client {
	client := &Client{
		inner:         resty.New(),
		serverAddress: strings.TrimRight(serverAddress, "/"),
	}

	client.inner.SetRedirectPolicy(
		resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}),
	)

	for _, opt := range options {
		opt(client)
	}

	return client
}

// WithTimeout задает время ожидания ответа сервера.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.inner.SetTimeout(timeout)
	}
}

// Create регистрирует короткую ссылку. Занятая ссылка не перезаписывается.
func (c *Client) Create(ctx context.Context, shortURL, target string) (string, error) {
	const op = "create short url"

	msg, err := c.send(ctx, http.MethodPost, shortURL, target)
	if err != nil {
		return "", errors.WithMessage(err, op)
	}

	return msg, nil
}

// Update связывает короткую ссылку с новым адресом, создавая ее при необходимости.
func (c *Client) Update(ctx context.Context, shortURL, target string) (string, error) {
	const op = "update short url"

	msg, err := c.send(ctx, http.MethodPut, shortURL, target)
	if err != nil {
		return "", errors.WithMessage(err, op)
	}

	return msg, nil
}

// Shorten сокращает адрес, короткая ссылка вычисляется сервером.
func (c *Client) Shorten(ctx context.Context, target string) (string, error) {
	const op = "shorten url"

	msg, err := c.send(ctx, http.MethodPost, "", target)
	if err != nil {
		return "", errors.WithMessage(err, op)
	}

	return msg, nil
}

// Lookup возвращает адрес, на который перенаправляет короткая ссылка.
func (c *Client) Lookup(ctx context.Context, shortURL string) (string, error) {
	const op = "lookup short url"

	endpoint, err := c.endpoint(shortURL)
	if err != nil {
		return "", errors.Wrap(err, op)
	}

	response, err := c.inner.R().SetContext(ctx).Get(endpoint)
	if err != nil {
		return "", errors.Wrap(err, op)
	}

	if !isRedirection(response.StatusCode()) {
		if err := statusError(response); err != nil {
			return "", errors.WithMessage(err, op)
		}
		return "", ErrNoRedirection
	}

	location := response.Header().Get(locationHeader)
	if location == "" {
		return "", ErrNoRedirection
	}

	return location, nil
}

func (c *Client) send(ctx context.Context, method, shortURL, target string) (string, error) {
	endpoint, err := c.endpoint(shortURL)
	if err != nil {
		return "", err
	}

	response, err := c.inner.R().
		SetContext(ctx).
		SetBody(target).
		Execute(method, endpoint)
	if err != nil {
		return "", errors.Wrap(err, "send request")
	}

	if err := statusError(response); err != nil {
		return "", err
	}

	return string(response.Body()), nil
}

func (c *Client) endpoint(shortURL string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s", c.serverAddress, url.PathEscape(shortURL))
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return "", errors.Wrap(err, "invalid api url")
	}

	return endpoint, nil
}

func statusError(response *resty.Response) error {
	code := response.StatusCode()
	if code < http.StatusBadRequest {
		return nil
	}

	body := response.Body()
	if !utf8.Valid(body) {
		return errors.New("expected utf8 response body")
	}

	if code >= http.StatusInternalServerError {
		return &ServerError{StatusCode: code, Message: string(body)}
	}

	return &RequestError{StatusCode: code, Message: string(body)}
}

func isRedirection(code int) bool {
	return code >= http.StatusMultipleChoices && code < http.StatusBadRequest
}
