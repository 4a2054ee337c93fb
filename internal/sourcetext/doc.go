// Package sourcetext analyzes crawled source documents for the batch
// generation pipeline: partitioning a result set into task groups,
// deriving the prompt context (topic, themes, key insights, best
// practices) for the content generator, and scoring generated text
// for uniqueness against its sources. All functions are pure and
// deterministic.
package sourcetext
