package dto

import "time"

// NamingToken is one token of a naming rule.
type NamingToken struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// NamingRuleRequest is the body of PUT /naming-rule.
type NamingRuleRequest struct {
	Tokens    []NamingToken `json:"tokens"`
	Separator string        `json:"separator"`
}

// NamingRule is the saved naming rule.
type NamingRule struct {
	Tokens    []NamingToken `json:"tokens"`
	Separator string        `json:"separator"`
	Pattern   string        `json:"pattern"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NamingRuleResponse holds the active rule, or null when none is saved.
type NamingRuleResponse struct {
	Data *NamingRule `json:"data"`
}
