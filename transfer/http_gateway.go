package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"golang.org/x/time/rate"

	"github.com/moyoez/upconfig/tool"
	"github.com/moyoez/upconfig/types"
)

// CommandAPIPrefix is the route group serving gateway commands.
const CommandAPIPrefix = "/api/command/v1"

// HTTPGatewayOptions tunes an HTTPGateway.
type HTTPGatewayOptions struct {
	Client  *http.Client // defaults to tool.GetHttpClient()
	RateRPS float64      // 0 = unlimited
}

// HTTPGateway sends commands to a remote command API.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPGateway creates a gateway for the command API at baseURL, e.g. http://127.0.0.1:53320.
func NewHTTPGateway(baseURL string, opts HTTPGatewayOptions) *HTTPGateway {
	g := &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/") + CommandAPIPrefix,
		client:  opts.Client,
	}
	if g.client == nil {
		g.client = tool.GetHttpClient()
	}
	if opts.RateRPS > 0 {
		burst := int(opts.RateRPS)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(opts.RateRPS), burst)
	}
	return g
}

type dataEnvelope struct {
	Data *types.ConfigRoot `json:"data"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

func (g *HTTPGateway) LoadConfig(ctx context.Context) (*types.ConfigRoot, error) {
	body, err := g.do(ctx, http.MethodGet, "/load_config", nil)
	if err != nil {
		return nil, err
	}
	var env dataEnvelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to parse load_config response: %v", err)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("load_config response missing data")
	}
	env.Data.Normalize()
	return env.Data, nil
}

func (g *HTTPGateway) SaveConfig(ctx context.Context) error {
	_, err := g.do(ctx, http.MethodPost, "/save_config", struct{}{})
	return err
}

func (g *HTTPGateway) AddUserTemplate(ctx context.Context, uid uint64, name string, tpl types.TemplateConfig) (*types.TemplateCommandResponse, error) {
	return g.templateCommand(ctx, "/add_user_template", types.TemplateCommandRequest{UID: uid, TemplateName: name, Template: &tpl})
}

func (g *HTTPGateway) UpdateUserTemplate(ctx context.Context, uid uint64, name string, tpl types.TemplateConfig) (*types.TemplateCommandResponse, error) {
	return g.templateCommand(ctx, "/update_user_template", types.TemplateCommandRequest{UID: uid, TemplateName: name, Template: &tpl})
}

func (g *HTTPGateway) DeleteUserTemplate(ctx context.Context, uid uint64, name string) (*types.TemplateCommandResponse, error) {
	return g.templateCommand(ctx, "/delete_user_template", types.TemplateCommandRequest{UID: uid, TemplateName: name})
}

func (g *HTTPGateway) SaveUserConfig(ctx context.Context, req types.SaveUserConfigRequest) error {
	_, err := g.do(ctx, http.MethodPost, "/save_user_config", req)
	return err
}

func (g *HTTPGateway) SaveGlobalConfig(ctx context.Context, req types.SaveGlobalConfigRequest) error {
	_, err := g.do(ctx, http.MethodPost, "/save_global_config", req)
	return err
}

func (g *HTTPGateway) templateCommand(ctx context.Context, path string, req types.TemplateCommandRequest) (*types.TemplateCommandResponse, error) {
	body, err := g.do(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}
	var resp types.TemplateCommandResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %v", path, err)
	}
	return &resp, nil
}

// do sends one command and returns the body of a 2xx response.
func (g *HTTPGateway) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: rate limiter: %w", path, err)
		}
	}

	var reader io.Reader
	if payload != nil {
		data, err := sonic.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %v", path, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := tool.NewHTTPReqWithApplication(http.NewRequestWithContext(ctx, method, g.baseURL+path, reader))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %v", path, err)
	}
	requestID := tool.GenerateRandomUUID()
	req.Header.Set("X-Request-Id", requestID)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s request: %w", path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %v", path, err)
	}
	tool.DefaultLogger.Debugf("[Gateway] %s %s -> %d (request %s)", method, path, resp.StatusCode, requestID)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	var env errorEnvelope
	if len(body) > 0 && sonic.Unmarshal(body, &env) == nil && env.Error != "" {
		return nil, &CommandError{Path: path, StatusCode: resp.StatusCode, Message: env.Error}
	}
	return nil, &CommandError{Path: path, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
}

// CommandError is a non-2xx reply from the command API.
type CommandError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Path, e.StatusCode, e.Message)
}
