// Package sase is a minimal client for the SASE configuration API.
//
// Objects are addressed by name. Upsert resolves a name to an object ID with
// a filtered list query and then creates, updates or deletes accordingly:
//
//	not found, !del  -> POST   {endpoint}
//	found,     !del  -> PUT    {endpoint}/{id}
//	found,      del  -> DELETE {endpoint}/{id}
//	not found,  del  -> no request (ActionNone)
//
// Requests are never retried.
package sase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/netops-tools/sasectl/pkg/util"
)

// Collection endpoints.
const (
	EndpointRemoteNetworks = "/config/v1/remote-networks"
	EndpointIKEGateways    = "/config/v1/ike-gateways"
	EndpointIPSecTunnels   = "/config/v1/ipsec-tunnels"
)

// Object is any payload addressable by name.
type Object interface {
	ObjectName() string
}

// Action is the write Upsert chose to perform.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionNone   Action = "none"
)

// Result is the response to the write Upsert performed. For ActionNone the
// status is zero and the body empty.
type Result struct {
	Action     Action
	StatusCode int
	Body       interface{}
	Raw        []byte
}

// Client talks to one API base URL with one bearer token.
type Client struct {
	baseURL *url.URL
	scope   string
	http    *http.Client
}

// New creates a client from cfg.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.Token,
		TokenType:   "Bearer",
	})

	return &Client{
		baseURL: base,
		scope:   cfg.Scope,
		http: &http.Client{
			Transport: &oauth2.Transport{
				Source: src,
				Base:   newLoggingTransport(cfg.Transport, cfg.UserAgent),
			},
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Resolve looks up the ID of the object called name in endpoint. Any status
// other than 200, or an empty list, means not found. A transport failure is
// returned as *util.TransportError.
func (c *Client) Resolve(ctx context.Context, endpoint, name string) (string, bool, error) {
	resp, raw, err := c.send(ctx, http.MethodGet, c.url(endpoint, "", name), nil)
	if err != nil {
		return "", false, err
	}
	if resp.StatusCode != http.StatusOK {
		util.WithFields(map[string]interface{}{"endpoint": endpoint, "object": name}).
			Debugf("lookup returned %d, treating as not found", resp.StatusCode)
		return "", false, nil
	}

	items, err := decodeList(raw)
	if err != nil {
		return "", false, fmt.Errorf("%w: decoding lookup of %q: %v", util.ErrAPI, name, err)
	}
	if len(items) == 0 || items[0].ID == "" {
		return "", false, nil
	}
	return items[0].ID, true, nil
}

// Upsert creates, updates or deletes obj in endpoint depending on whether an
// object with the same name exists and on del.
func (c *Client) Upsert(ctx context.Context, endpoint string, obj Object, del bool) (*Result, error) {
	id, found, err := c.Resolve(ctx, endpoint, obj.ObjectName())
	if err != nil {
		return nil, err
	}

	switch {
	case !found && del:
		return &Result{Action: ActionNone}, nil
	case !found:
		return c.write(ctx, ActionCreate, http.MethodPost, c.url(endpoint, "", ""), obj)
	case del:
		return c.write(ctx, ActionDelete, http.MethodDelete, c.url(endpoint, id, ""), nil)
	default:
		return c.write(ctx, ActionUpdate, http.MethodPut, c.url(endpoint, id, ""), obj)
	}
}

func (c *Client) write(ctx context.Context, action Action, method, target string, obj Object) (*Result, error) {
	var body []byte
	if obj != nil {
		var err error
		if body, err = json.Marshal(obj); err != nil {
			return nil, fmt.Errorf("encoding %q: %w", obj.ObjectName(), err)
		}
	}

	resp, raw, err := c.send(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	res := &Result{Action: action, StatusCode: resp.StatusCode, Raw: raw}
	if len(bytes.TrimSpace(raw)) > 0 {
		// Error pages are not always JSON; Raw keeps them.
		_ = json.Unmarshal(raw, &res.Body)
	}
	return res, nil
}

// send performs one request and reads the whole body.
func (c *Client) send(ctx context.Context, method, target string, body []byte) (*http.Response, []byte, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, util.NewTransportError(method, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, util.NewTransportError(method, target, err)
	}
	return resp, raw, nil
}

// url builds {base}{endpoint}[/{id}]?scope=...[&name=...].
func (c *Client) url(endpoint, id, name string) string {
	u := c.baseURL.JoinPath(endpoint)
	if id != "" {
		u = u.JoinPath(id)
	}
	q := url.Values{}
	q.Set("scope", c.scope)
	if name != "" {
		q.Set("name", name)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

type listItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// decodeList accepts a bare JSON array or a {"data": [...]} envelope.
func decodeList(raw []byte) ([]listItem, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	if raw[0] == '[' {
		var items []listItem
		err := json.Unmarshal(raw, &items)
		return items, err
	}
	var env struct {
		Data []listItem `json:"data"`
	}
	err := json.Unmarshal(raw, &env)
	return env.Data, err
}
