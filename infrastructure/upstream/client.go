// Package upstream talks to the knowledge-graph generation API. The client
// rate-limits outbound calls, trips a circuit breaker when the API degrades,
// and translates wire payloads into domain types.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "kgexplorer/pkg/errors"
	"kgexplorer/pkg/observability"

	"kgexplorer/domain/graph"
)

const (
	// DefaultTimeout bounds a single upstream request. Graph generation is
	// slow but anything beyond this indicates a stuck request.
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimit is the steady-state outbound request rate.
	DefaultRateLimit = 10 // requests per second

	// DefaultUserID is sent when no user identity is configured.
	DefaultUserID = "user123"

	defaultMaturity   = "startup"
	defaultVolatility = "high"
	defaultPressure   = "high"
	defaultRegulatory = "moderate"
)

// Client is a rate-limited HTTP client for the knowledge-graph API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userID     string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
	metrics    *observability.Metrics
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserID sets the identity sent on query submissions.
func WithUserID(id string) Option {
	return func(c *Client) { c.userID = id }
}

// WithRateLimit overrides the outbound requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithMetrics attaches request counters and latency tracking.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    baseURL,
		userID:     DefaultUserID,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		logger:     logger,
		tracer:     otel.Tracer("kgexplorer/upstream"),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "upstream-api",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetRateLimit adjusts the outbound requests-per-second limit at runtime.
// Non-positive values are ignored.
func (c *Client) SetRateLimit(rps float64) {
	if rps <= 0 {
		return
	}
	c.limiter.SetLimit(rate.Limit(rps))
	c.logger.Info("upstream rate limit updated", zap.Float64("rps", rps))
}

// SubmitQuery asks the API to generate a knowledge graph for a query.
func (c *Client) SubmitQuery(ctx context.Context, input QueryInput) (*QueryResult, error) {
	req := queryRequest{
		Query:  input.Query,
		UserID: c.userID,
		ContextParams: contextParamsShape{
			DocumentID: input.DocumentID,
			Company: companyShape{
				Size:     input.CompanySize,
				Maturity: orDefault(input.Maturity, defaultMaturity),
				Industry: input.Industry,
			},
			ManagementRole: input.Role,
			ChallengeType:  input.ChallengeType,
			Environment: environmentShape{
				MarketVolatility:      orDefault(input.Volatility, defaultVolatility),
				CompetitivePressure:   orDefault(input.Pressure, defaultPressure),
				RegulatoryEnvironment: orDefault(input.Regulatory, defaultRegulatory),
			},
		},
	}

	var resp queryResponse
	if err := c.do(ctx, "submit_query", http.MethodPost, "/query", nil, req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apperrors.NewUpstreamError("query submission rejected", nil)
	}
	return &QueryResult{QueryID: resp.QueryID, GraphID: resp.GraphID}, nil
}

// GetGraph fetches the hierarchical graph payload for a graph id. Layer
// bounds the depth requested; connections asks for cross-hierarchy edges.
func (c *Client) GetGraph(ctx context.Context, graphID string, layer int, connections bool) (*graph.TreeNode, []graph.Connection, error) {
	params := url.Values{}
	params.Set("layer", strconv.Itoa(layer))
	params.Set("connections", strconv.FormatBool(connections))

	var resp graphResponse
	path := "/graph/" + url.PathEscape(graphID)
	if err := c.do(ctx, "get_graph", http.MethodGet, path, params, nil, &resp); err != nil {
		return nil, nil, err
	}
	if resp.Graph == nil {
		return nil, nil, apperrors.NewUpstreamError("graph payload missing root", nil)
	}
	return resp.Graph, resp.Connections, nil
}

// FetchNode retrieves one node with its connections and derives the three
// views the detail panel needs.
func (c *Client) FetchNode(ctx context.Context, graphID, nodeID string) (*NodePayload, error) {
	params := url.Values{}
	params.Set("connections", "true")

	var resp nodeResponse
	path := "/node/" + url.PathEscape(graphID) + "/" + url.PathEscape(nodeID)
	if err := c.do(ctx, "fetch_node", http.MethodGet, path, params, nil, &resp); err != nil {
		return nil, err
	}

	details := &graph.NodeDetails{
		ID:          resp.Node.ID,
		Title:       resp.Node.Title,
		Description: resp.Node.Description,
		Layer:       resp.Node.Layer,
		Relevance:   resp.Node.Relevance,
		Children:    resp.Node.Children,
		Path:        resp.Path,
	}

	related := make([]graph.RelatedNode, 0, len(resp.Node.Children))
	for _, child := range resp.Node.Children {
		strength := child.Relevance
		if strength <= 0 {
			strength = graph.DefaultRelevance
		}
		related = append(related, graph.RelatedNode{
			ID:                 child.ID,
			Name:               child.Title,
			Description:        child.Description,
			Layer:              child.Layer,
			Relevance:          child.Relevance,
			GraphID:            graphID,
			ConnectionStrength: strength,
		})
	}

	examples := resp.Examples
	if examples == nil {
		examples = []graph.Example{}
	}

	return &NodePayload{Details: details, RelatedNodes: related, Examples: examples}, nil
}

// SendChat sends a chat message about a node and returns the reply.
func (c *Client) SendChat(ctx context.Context, input ChatInput) (*ChatResult, error) {
	history := input.History
	if history == nil {
		history = []ChatTurn{}
	}
	req := chatRequest{
		ChatHistory: history,
		DocumentID:  input.DocumentID,
		GraphID:     input.GraphID,
		NodeID:      input.NodeID,
		Query:       input.Message,
		QueryID:     input.QueryID,
	}

	var resp chatResponse
	if err := c.do(ctx, "send_chat", http.MethodPost, "/node-chat", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.Response == "" {
		resp.Response = "No response from the assistant."
	}
	return &ChatResult{
		Message:            resp.Response,
		SuggestedQuestions: resp.SuggestedQuestions,
		Examples:           resp.Examples,
		RelatedNodes:       resp.RelatedNodes,
	}, nil
}

// GetQuiz generates multiple-choice questions for a node.
func (c *Client) GetQuiz(ctx context.Context, graphID, nodeID, queryID, documentID string, numQuestions int) ([]QuizQuestion, error) {
	if numQuestions <= 0 {
		numQuestions = 5
	}
	req := quizRequest{
		DocumentID:   documentID,
		GraphID:      graphID,
		NodeID:       nodeID,
		NumQuestions: numQuestions,
		QueryID:      queryID,
	}

	var resp quizResponse
	if err := c.do(ctx, "get_quiz", http.MethodPost, "/node-quiz", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Questions, nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, params url.Values, body, dest any) error {
	ctx, span := c.tracer.Start(ctx, "upstream."+operation,
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		))
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.NewUpstreamError("rate limit wait aborted", err)
	}

	start := time.Now()
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.roundTrip(ctx, method, path, params, body, dest)
	})
	elapsed := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
	}
	c.metrics.UpstreamRequest(operation, outcome, elapsed.Seconds())
	c.logger.Debug("upstream request",
		zap.String("operation", operation),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed))

	if err != nil {
		if apperrors.IsUpstream(err) || apperrors.IsNotFound(err) {
			return err
		}
		return apperrors.NewUpstreamError("upstream request failed", err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, params url.Values, body, dest any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewUpstreamError("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NewNotFoundError("upstream resource not found")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.NewUpstreamError(
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(snippet)), nil)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return apperrors.NewUpstreamError("decoding response", err)
	}
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
