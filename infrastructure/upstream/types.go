package upstream

import "kgexplorer/domain/graph"

// QueryInput carries everything the query submission endpoint needs.
type QueryInput struct {
	Query         string
	DocumentID    string
	CompanySize   string
	Maturity      string
	Industry      string
	Role          string
	ChallengeType string
	Volatility    string
	Pressure      string
	Regulatory    string
}

// QueryResult identifies the graph generated for a submitted query.
type QueryResult struct {
	QueryID string
	GraphID string
}

// NodePayload bundles the three views derived from one node fetch: the
// detail record, the children recast as related nodes, and worked examples.
type NodePayload struct {
	Details      *graph.NodeDetails
	RelatedNodes []graph.RelatedNode
	Examples     []graph.Example
}

// ChatTurn is one prior exchange sent back to the chat endpoint.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatInput carries a chat message about a node plus its conversation so far.
type ChatInput struct {
	GraphID    string
	NodeID     string
	QueryID    string
	DocumentID string
	Message    string
	History    []ChatTurn
}

// ChatResult is the assistant's reply with its suggested follow-ups.
type ChatResult struct {
	Message            string
	SuggestedQuestions []string
	Examples           []graph.Example
	RelatedNodes       []graph.RelatedNode
}

// QuizQuestion is one multiple-choice question generated for a node.
type QuizQuestion struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

// Wire shapes. The upstream API speaks snake_case throughout.

type queryRequest struct {
	Query         string              `json:"query"`
	UserID        string              `json:"user_id"`
	ContextParams contextParamsShape `json:"context_params"`
}

type contextParamsShape struct {
	DocumentID     string           `json:"document_id"`
	Company        companyShape     `json:"company"`
	ManagementRole string           `json:"management_role"`
	ChallengeType  string           `json:"challenge_type"`
	Environment    environmentShape `json:"environment"`
}

type companyShape struct {
	Size     string `json:"size"`
	Maturity string `json:"maturity"`
	Industry string `json:"industry"`
}

type environmentShape struct {
	MarketVolatility      string `json:"market_volatility"`
	CompetitivePressure   string `json:"competitive_pressure"`
	RegulatoryEnvironment string `json:"regulatory_environment"`
}

type queryResponse struct {
	Success bool   `json:"success"`
	QueryID string `json:"query_id"`
	GraphID string `json:"graph_id"`
}

type graphResponse struct {
	Graph       *graph.TreeNode    `json:"graph"`
	Connections []graph.Connection `json:"connections"`
}

type nodeResponse struct {
	Node     graph.TreeNode    `json:"node"`
	Path     []graph.PathEntry `json:"path"`
	Examples []graph.Example   `json:"examples"`
}

type chatRequest struct {
	ChatHistory []ChatTurn `json:"chat_history"`
	DocumentID  string     `json:"document_id"`
	GraphID     string     `json:"graph_id"`
	NodeID      string     `json:"node_id"`
	Query       string     `json:"query"`
	QueryID     string     `json:"query_id"`
}

type chatResponse struct {
	Response           string              `json:"response"`
	SuggestedQuestions []string            `json:"suggested_questions"`
	Examples           []graph.Example     `json:"examples"`
	RelatedNodes       []graph.RelatedNode `json:"related_nodes"`
}

type quizRequest struct {
	DocumentID   string `json:"document_id"`
	GraphID      string `json:"graph_id"`
	NodeID       string `json:"node_id"`
	NumQuestions int    `json:"num_questions"`
	QueryID      string `json:"query_id"`
}

type quizResponse struct {
	Questions []QuizQuestion `json:"questions"`
}
