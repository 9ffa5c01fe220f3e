package chain

import "github.com/MaxiDonkey/synkflow/cot"

// Bundled chains of thought for the reference macro-flow. Each constant is
// line-delimited JSON, one reasoning step per line, loadable with
// [MustChain].

// DefaultClarify instructs the model to decompose the user's question into
// researchable sub-questions, one JSON object per line with a "web_search"
// field, as the research fan-out expects.
const DefaultClarify = `{"step":1,"title":"Clarify","instructions":["Restate the user's question in your own words.","Break it into 3 to 5 independent sub-questions that web research could answer.","Respond with exactly one JSON object per line, no surrounding array, each shaped as {\"step\": <n>, \"title\": \"<short name>\", \"web_search\": \"<the sub-question>\"}.","Do not add any text outside the JSON lines."]}`

// DefaultSynthesize folds the raw research notes into a coherent analysis.
const DefaultSynthesize = `{"step":1,"title":"Synthesize","instructions":["You receive research notes gathered for several sub-questions.","Reconcile them: resolve contradictions, drop redundancies, keep sourceable facts.","Produce a structured analysis that fully answers the original question."]}`

// DefaultWrite turns the analysis into the final document.
const DefaultWrite = `{"step":1,"title":"Write","instructions":["Write the final answer as a well-organized Markdown document.","Open with a short summary, then develop each point from the analysis.","Keep the tone factual and cite the research where it supports a claim."]}`

// MustChain parses a bundled chain-of-thought constant and panics on
// malformed input. Intended for the package's own constants and other
// compile-time literals.
func MustChain(text string) cot.Chain {
	chain, err := cot.Parse(text, true)
	if err != nil {
		panic(err)
	}
	return chain
}
