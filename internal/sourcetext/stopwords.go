package sourcetext

// stopwords are excluded from theme and topic extraction. The list
// covers common English function words; anything of length <= 3 is
// already filtered by the significance rule.
var stopwords = map[string]struct{}{
	"about": {}, "above": {}, "after": {}, "again": {}, "against": {},
	"allow": {}, "also": {}, "among": {}, "around": {}, "because": {},
	"been": {}, "before": {}, "being": {}, "below": {}, "between": {},
	"both": {}, "cannot": {}, "could": {}, "does": {}, "doing": {},
	"down": {}, "during": {}, "each": {}, "even": {}, "every": {},
	"from": {}, "further": {}, "have": {}, "having": {}, "here": {},
	"into": {}, "itself": {}, "just": {}, "like": {}, "made": {},
	"make": {}, "many": {}, "more": {}, "most": {}, "much": {},
	"must": {}, "only": {}, "other": {}, "over": {}, "same": {},
	"should": {}, "some": {}, "such": {}, "than": {}, "that": {},
	"their": {}, "them": {}, "then": {}, "there": {}, "these": {},
	"they": {}, "this": {}, "those": {}, "through": {}, "under": {},
	"until": {}, "very": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "while": {}, "will": {}, "with": {},
	"would": {}, "your": {}, "yours": {},
}

func isStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}
