package prompt

import (
	"strings"
	"testing"
)

func TestAssemble(t *testing.T) {
	a := NewAssembler("")
	msgs := a.Assemble("what drops epics?", "hell mode dungeons drop epic weapons")

	if len(msgs) != 2 {
		t.Fatalf("messages got %d, want exactly 2", len(msgs))
	}
	if msgs[0].Role != RoleSystem {
		t.Errorf("first role got %q, want %q", msgs[0].Role, RoleSystem)
	}
	if msgs[1].Role != RoleUser {
		t.Errorf("second role got %q, want %q", msgs[1].Role, RoleUser)
	}
	if !strings.Contains(msgs[0].Content, "hell mode dungeons drop epic weapons") {
		t.Error("system message is missing the context chunk")
	}
	if strings.Contains(msgs[0].Content, ContextPlaceholder) {
		t.Error("placeholder was not substituted")
	}
	if msgs[1].Content != "Q: what drops epics?" {
		t.Errorf("user message got %q", msgs[1].Content)
	}
}

func TestAssemble_CustomTemplate(t *testing.T) {
	a := NewAssembler("Use this: {doc}. Nothing else.")
	msgs := a.Assemble("q", "CONTEXT")

	if msgs[0].Content != "Use this: CONTEXT. Nothing else." {
		t.Errorf("system message got %q", msgs[0].Content)
	}
}

func TestAssemble_QuestionIsNotInterpolated(t *testing.T) {
	// A question containing the placeholder must land in the user message
	// verbatim, never expand inside the template.
	a := NewAssembler("")
	msgs := a.Assemble("what does {doc} mean?", "some context")

	if msgs[1].Content != "Q: what does {doc} mean?" {
		t.Errorf("user message got %q", msgs[1].Content)
	}
	if strings.Contains(msgs[0].Content, "what does") {
		t.Error("question leaked into the system message")
	}
}

func TestAssemble_EmptyContext(t *testing.T) {
	a := NewAssembler("")
	msgs := a.Assemble("q", "")

	if len(msgs) != 2 {
		t.Fatalf("messages got %d, want 2", len(msgs))
	}
	if strings.Contains(msgs[0].Content, ContextPlaceholder) {
		t.Error("placeholder survived an empty substitution")
	}
}
