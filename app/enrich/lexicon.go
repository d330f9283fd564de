package enrich

// Small built-in lexicons for sentiment scoring and loaded-language
// detection. Deliberately compact: the enricher is tuned for headline-length
// news prose, not general NLP.

var positiveWords = map[string]struct{}{
	"achievement": {}, "advance": {}, "agree": {}, "approve": {}, "benefit": {},
	"best": {}, "boost": {}, "breakthrough": {}, "celebrate": {}, "champion": {},
	"confident": {}, "effective": {}, "encouraging": {}, "excellent": {}, "gain": {},
	"good": {}, "great": {}, "grow": {}, "growth": {}, "happy": {},
	"hope": {}, "improve": {}, "improvement": {}, "innovative": {}, "opportunity": {},
	"optimistic": {}, "positive": {}, "progress": {}, "promising": {}, "prosper": {},
	"recover": {}, "recovery": {}, "reward": {}, "rise": {}, "strong": {},
	"succeed": {}, "success": {}, "successful": {}, "support": {}, "thrive": {},
	"triumph": {}, "win": {}, "winner": {},
}

var negativeWords = map[string]struct{}{
	"abandon": {}, "accuse": {}, "attack": {}, "bad": {}, "blame": {},
	"collapse": {}, "conflict": {}, "crash": {}, "crisis": {}, "criticize": {},
	"damage": {}, "danger": {}, "dangerous": {}, "decline": {}, "defeat": {},
	"deficit": {}, "destroy": {}, "disaster": {}, "dispute": {}, "fail": {},
	"failure": {}, "fear": {}, "fraud": {}, "kill": {}, "lose": {},
	"loss": {}, "negative": {}, "panic": {}, "poor": {}, "problem": {},
	"recession": {}, "reject": {}, "risk": {}, "scandal": {}, "threat": {},
	"threaten": {}, "trouble": {}, "violence": {}, "warn": {}, "warning": {},
	"weak": {}, "worst": {},
}

// loadedWords are emotionally charged or editorializing terms used as a
// rough proxy for bias.
var loadedWords = map[string]struct{}{
	"absolutely": {}, "alarming": {}, "appalling": {}, "astonishing": {},
	"blatant": {}, "bombshell": {}, "catastrophic": {}, "chaos": {},
	"corrupt": {}, "devastating": {}, "disgraceful": {}, "explosive": {},
	"extremist": {}, "horrific": {}, "incredible": {}, "outrageous": {},
	"radical": {}, "reckless": {}, "shameful": {}, "shocking": {},
	"slam": {}, "slams": {}, "stunning": {}, "terrifying": {},
	"unbelievable": {}, "unprecedented": {}, "vicious": {},
}

var stopWords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "an": {},
	"and": {}, "any": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"because": {}, "been": {}, "but": {}, "by": {}, "can": {}, "could": {},
	"did": {}, "do": {}, "does": {}, "for": {}, "from": {}, "had": {},
	"has": {}, "have": {}, "he": {}, "her": {}, "his": {}, "how": {},
	"i": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {},
	"its": {}, "just": {}, "more": {}, "most": {}, "new": {}, "no": {},
	"not": {}, "of": {}, "on": {}, "one": {}, "or": {}, "other": {},
	"our": {}, "out": {}, "over": {}, "said": {}, "she": {}, "so": {},
	"some": {}, "than": {}, "that": {}, "the": {}, "their": {}, "them": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "to": {},
	"up": {}, "was": {}, "we": {}, "were": {}, "what": {}, "when": {},
	"which": {}, "who": {}, "will": {}, "with": {}, "would": {}, "you": {},
}
