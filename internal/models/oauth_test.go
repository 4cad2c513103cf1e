package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOAuthState(t *testing.T) {
	tests := []struct {
		state         string
		want          OAuthState
		agentOK       bool
		workspaceOnly bool
	}{
		{state: "ws1:a1", want: OAuthState{WorkspaceID: "ws1", AgentID: "a1"}, agentOK: true, workspaceOnly: true},
		{state: "ws1:a1:acme", want: OAuthState{WorkspaceID: "ws1", AgentID: "a1", WorkspaceSlug: "acme"}, agentOK: true, workspaceOnly: true},
		{state: "ws1", want: OAuthState{WorkspaceID: "ws1"}, workspaceOnly: true},
		{state: "ws1:", want: OAuthState{WorkspaceID: "ws1"}, workspaceOnly: true},
		{state: ":a1"},
		{state: ""},
	}
	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			got, ok := ParseOAuthState(tt.state)
			assert.Equal(t, tt.agentOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}

			got, ok = ParseWorkspaceOAuthState(tt.state)
			assert.Equal(t, tt.workspaceOnly, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestOAuthStateSourcesPath(t *testing.T) {
	withAgent := OAuthState{WorkspaceID: "ws1", AgentID: "a1"}
	assert.Equal(t, "/dashboard/ws1/agents/a1/sources/notion", withAgent.SourcesPath("notion"))
	assert.Equal(t, "a1", *withAgent.OptionalAgentID())

	workspaceOnly := OAuthState{WorkspaceID: "ws1"}
	assert.Equal(t, "/dashboard/ws1/sources/google-sheets", workspaceOnly.SourcesPath("google-sheets"))
	assert.Nil(t, workspaceOnly.OptionalAgentID())
}
