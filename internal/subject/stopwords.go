package subject

// stopWords are high-frequency English words that never make a useful topic.
var stopWords = map[string]bool{
	// Articles and determiners
	"a": true, "an": true, "the": true, "this": true, "that": true,
	"these": true, "those": true, "each": true, "every": true, "either": true,
	"neither": true, "another": true, "such": true, "same": true, "own": true,
	// Pronouns
	"i": true, "me": true, "my": true, "myself": true, "mine": true,
	"we": true, "us": true, "our": true, "ours": true, "ourselves": true,
	"you": true, "your": true, "yours": true, "yourself": true, "yourselves": true,
	"he": true, "him": true, "his": true, "himself": true,
	"she": true, "her": true, "hers": true, "herself": true,
	"it": true, "its": true, "itself": true,
	"they": true, "them": true, "their": true, "theirs": true, "themselves": true,
	"who": true, "whom": true, "whose": true, "which": true, "what": true,
	"whoever": true, "whatever": true, "whichever": true,
	"someone": true, "something": true, "anyone": true, "anything": true,
	"everyone": true, "everything": true, "nobody": true, "nothing": true,
	"none": true, "somewhere": true, "anywhere": true, "everywhere": true,
	// Auxiliaries and modals
	"am": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "having": true,
	"do": true, "does": true, "did": true, "doing": true, "done": true,
	"will": true, "would": true, "shall": true, "should": true,
	"can": true, "could": true, "may": true, "might": true, "must": true,
	// Prepositions
	"about": true, "above": true, "across": true, "after": true, "against": true,
	"along": true, "among": true, "around": true, "at": true, "before": true,
	"behind": true, "below": true, "beside": true, "between": true, "beyond": true,
	"by": true, "down": true, "during": true, "for": true, "from": true,
	"in": true, "into": true, "of": true, "off": true, "on": true,
	"onto": true, "out": true, "over": true, "per": true, "since": true,
	"through": true, "throughout": true, "to": true, "toward": true, "towards": true,
	"under": true, "until": true, "up": true, "upon": true, "via": true,
	"with": true, "within": true, "without": true,
	// Conjunctions
	"and": true, "but": true, "or": true, "nor": true, "so": true,
	"yet": true, "if": true, "because": true, "although": true, "though": true,
	"unless": true, "whereas": true, "whether": true, "while": true, "than": true,
	// Adverbs
	"again": true, "almost": true, "already": true, "also": true, "always": true,
	"ever": true, "here": true, "there": true, "how": true, "just": true,
	"more": true, "most": true, "much": true, "never": true, "not": true,
	"now": true, "often": true, "once": true, "only": true, "perhaps": true,
	"quite": true, "rather": true, "really": true, "still": true, "then": true,
	"thence": true, "thus": true, "too": true, "very": true, "well": true,
	"when": true, "where": true, "why": true, "whenever": true, "wherever": true,
	"however": true, "therefore": true, "otherwise": true, "instead": true,
	// Quantifiers
	"all": true, "any": true, "both": true, "few": true, "many": true,
	"several": true, "some": true, "other": true, "others": true, "less": true,
	"least": true, "enough": true, "no": true,
	"one": true, "two": true, "three": true, "first": true, "last": true,
	// Frequent verbs with no topic value
	"get": true, "go": true, "make": true, "made": true, "say": true,
	"see": true, "take": true, "put": true, "give": true, "show": true,
	"become": true, "keep": true, "call": true,
	// Contraction fragments
	"n't": true, "'s": true, "'re": true, "'ve": true, "'ll": true, "'d": true, "'m": true,
}
