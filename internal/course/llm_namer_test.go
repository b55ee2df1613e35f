package course

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/chessdrill/internal/llm"
)

func TestLLMNamer_UsesModelAnswer(t *testing.T) {
	mock := llm.NewMockProvider(llm.Reply(`{"name":"  Two Knights Defense ","category":"Italian Game"}`))
	n := NewLLMNamer(mock, nil, DefaultLLMNamerConfig(), nil)

	v := Variation{
		Number:    1,
		Moves:     []string{"e4", "e5", "Nf3", "Nc6", "Bc4", "Nf6"},
		BranchPly: 5,
		Opening:   "Italian Game",
	}
	got, err := n.Name(context.Background(), v)
	if err != nil {
		t.Fatalf("Name: %v", err)
	}
	if got.Name != "Two Knights Defense" || got.Category != "Italian Game" {
		t.Errorf("Name() = %+v", got)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("calls = %d, want 1", len(reqs))
	}
	req := reqs[0]
	if req.Schema != NamingSchema {
		t.Error("request should carry the naming schema")
	}
	prompt := req.Messages[0].Content
	for _, want := range []string{"1.e4 e5 2.Nf3 Nc6 3.Bc4 Nf6", "variation 1", "ply 5", "Opening tag: Italian Game"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestLLMNamer_FallsBack(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"provider error", llm.Fail(&llm.Error{Kind: llm.KindUnavailable, Err: errors.New("down")})},
		{"empty name", llm.Reply(`{"name":"","category":"x"}`)},
		{"not json", llm.Reply(`nope`)},
	}

	v := Variation{Number: 2, Moves: []string{"e4", "c5", "Nf3", "d6"}, BranchPly: 1}
	want, _ := HeuristicNamer{}.Name(context.Background(), v)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewLLMNamer(llm.NewMockProvider(tt.resp), nil, DefaultLLMNamerConfig(), nil)
			got, err := n.Name(context.Background(), v)
			if err != nil {
				t.Fatalf("Name: %v", err)
			}
			if got != want {
				t.Errorf("Name() = %+v, want heuristic %+v", got, want)
			}
		})
	}
}

func TestLLMNamer_DefaultCategory(t *testing.T) {
	mock := llm.NewMockProvider(llm.Reply(`{"name":"Najdorf","category":" "}`))
	n := NewLLMNamer(mock, nil, DefaultLLMNamerConfig(), nil)
	got, err := n.Name(context.Background(), Variation{Moves: []string{"e4", "c5"}})
	if err != nil {
		t.Fatalf("Name: %v", err)
	}
	if got.Category != "Variations" {
		t.Errorf("Category = %q, want Variations", got.Category)
	}
}

func TestNumberedMoves(t *testing.T) {
	tests := []struct {
		moves []string
		want  string
	}{
		{nil, ""},
		{[]string{"d4"}, "1.d4"},
		{[]string{"d4", "d5", "c4"}, "1.d4 d5 2.c4"},
	}
	for _, tt := range tests {
		if got := numberedMoves(tt.moves); got != tt.want {
			t.Errorf("numberedMoves(%v) = %q, want %q", tt.moves, got, tt.want)
		}
	}
}
