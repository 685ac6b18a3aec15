package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/memomind/memomind/internal/llm"
	"github.com/memomind/memomind/internal/vectorstore"
)

const (
	// DefaultTopK is how many segments survive diversity selection
	// and enter the prompt context.
	DefaultTopK = 10
	// DefaultFetchK is how many raw candidates the vector store is
	// asked for before diversity selection narrows them down.
	DefaultFetchK = 20
	// DefaultLambda weighs relevance against diversity; the low value
	// deliberately favors spread across the vault.
	DefaultLambda = 0.25

	// provenanceTop caps how many retrieved segments contribute
	// related-note and reference provenance to a response.
	provenanceTop = 2
)

// Provenance carries the display-ready grounding attached to an answer:
// related notes rendered as backtick tokens and references rendered as
// numbered markdown links.
type Provenance struct {
	RelatedNotes []string `json:"related_notes"`
	References   []string `json:"references"`
}

// Orchestrator answers conversational queries over the indexed vault.
type Orchestrator struct {
	model    llm.LanguageModel
	embedder llm.EmbeddingProvider
	store    vectorstore.Store
	logger   *slog.Logger

	topK   int
	fetchK int
	lambda float64
}

// Option tweaks retrieval parameters on an Orchestrator.
type Option func(*Orchestrator)

func WithTopK(k int) Option       { return func(o *Orchestrator) { o.topK = k } }
func WithFetchK(k int) Option     { return func(o *Orchestrator) { o.fetchK = k } }
func WithLambda(l float64) Option { return func(o *Orchestrator) { o.lambda = l } }

// NewOrchestrator wires a model, an embedder and a vector store into a
// query pipeline with the default retrieval parameters.
func NewOrchestrator(model llm.LanguageModel, embedder llm.EmbeddingProvider, store vectorstore.Store, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		model:    model,
		embedder: embedder,
		store:    store,
		logger:   logger,
		topK:     DefaultTopK,
		fetchK:   DefaultFetchK,
		lambda:   DefaultLambda,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.fetchK < o.topK {
		o.fetchK = o.topK
	}
	return o
}

// Answer runs one conversational exchange: it assembles the augmented
// prompt from the session history, the task template and the query,
// retrieves diverse supporting segments, invokes the model with the
// segments stuffed into the prompt, appends both turns to the session
// and returns the answer with its provenance.
func (o *Orchestrator) Answer(ctx context.Context, sess *Session, query string, task Task) (string, Provenance, error) {
	augmented := buildPrompt(sess.History(), task, query)

	vecs, err := o.embedder.Embed(ctx, []string{augmented})
	if err != nil {
		return "", Provenance{}, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return "", Provenance{}, fmt.Errorf("embed query: got %d vectors, want 1", len(vecs))
	}

	candidates, err := o.store.Search(ctx, vecs[0], o.fetchK, true)
	if err != nil {
		return "", Provenance{}, fmt.Errorf("search: %w", err)
	}
	picked := maximalMarginalRelevance(vecs[0], candidates, o.topK, o.lambda)
	o.logger.Debug("retrieved context", "candidates", len(candidates), "selected", len(picked))

	answer, err := o.model.Generate(ctx, stuffPrompt(augmented, picked))
	if err != nil {
		return "", Provenance{}, fmt.Errorf("generate: %w", err)
	}

	sess.Append(RoleUser, query)
	sess.Append(RoleAssistant, answer)

	return answer, provenanceFrom(picked), nil
}

// buildPrompt concatenates the rendered history, the task instructions
// and the live query into the retrieval-and-generation prompt.
func buildPrompt(history []Turn, task Task, query string) string {
	var b strings.Builder
	if h := renderHistory(history); h != "" {
		b.WriteString("Conversation so far:\n")
		b.WriteString(h)
		b.WriteString("\n")
	}
	if task.Instructions != "" {
		b.WriteString(task.Instructions)
		b.WriteString("\n\n")
	}
	b.WriteString("User query: ")
	b.WriteString(query)
	return b.String()
}

// stuffPrompt appends the retrieved segment texts to the prompt in
// full. All selected segments go in; there is no further ranking or
// compression step.
func stuffPrompt(prompt string, matches []vectorstore.Match) string {
	if len(matches) == 0 {
		return prompt
	}
	var b strings.Builder
	b.WriteString("Use the following pieces of context from the user's notes to respond. If the context does not cover the query, say so rather than inventing details.\n\n")
	for _, m := range matches {
		b.WriteString(m.Segment.Text)
		b.WriteString("\n\n")
	}
	b.WriteString(prompt)
	return b.String()
}

// provenanceFrom renders grounding from the top retrieved segments.
// Related notes are deduplicated in first-seen order; references are
// deduplicated on their rendered form and numbered.
func provenanceFrom(matches []vectorstore.Match) Provenance {
	top := matches
	if len(top) > provenanceTop {
		top = top[:provenanceTop]
	}

	var p Provenance
	seenNotes := make(map[string]struct{})
	seenRefs := make(map[string]struct{})
	for _, m := range top {
		for _, name := range m.Segment.RelatedNotes {
			if _, ok := seenNotes[name]; ok {
				continue
			}
			seenNotes[name] = struct{}{}
			p.RelatedNotes = append(p.RelatedNotes, "`"+name+"`")
		}
		for _, ref := range m.Segment.References {
			rendered := fmt.Sprintf("[%s](%s)", ref.Title, ref.Link)
			if _, ok := seenRefs[rendered]; ok {
				continue
			}
			seenRefs[rendered] = struct{}{}
			p.References = append(p.References, fmt.Sprintf("%d. %s", len(p.References)+1, rendered))
		}
	}
	return p
}
