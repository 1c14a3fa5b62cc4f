package metrics

// Metric identifiers. These are stable keys used by the policy table and
// the API; display labels may change per schema variant but IDs never do.
const (
	MetricBotHandled       = "bot_handled"
	MetricChatsShadowed    = "chats_shadowed"
	MetricSimilarity       = "message_similarity"
	MetricIncorrectTools   = "incorrect_tool_calls"
	MetricHandlingDelay    = "handling_delay"
	MetricEscalations      = "escalations"
	MetricSentiment        = "sentiment"
	MetricQualityScore     = "quality_score"
	MetricAnnotationResult = "annotation_result"
	MetricCostPerChat      = "cost_per_chat"
	MetricPolicyCompliance = "policy_compliance"
)

// registry holds every metric the dashboard knows how to render, in
// default row order. Exactly one descriptor exists per conceptual
// metric; date-based label variants live inside the descriptor, not as
// separate entries.
var registry = []Descriptor{
	{ID: MetricBotHandled, Label: "Bot handled %", Kind: KindRoundedPercent},
	{ID: MetricChatsShadowed, Label: "Chats shadowed %", Kind: KindPassthrough},
	{
		ID:          MetricSimilarity,
		Label:       "50% Message similarity %",
		LegacyLabel: "80% Message similarity %",
		Kind:        KindPercentAvg,
	},
	{ID: MetricIncorrectTools, Label: "Incorrect tool calls %", Kind: KindPercentAvg},
	{ID: MetricHandlingDelay, Label: "Avg. handling delay", Kind: KindDelaySplit},
	{ID: MetricEscalations, Label: "Escalations", Kind: KindIntCount},
	{
		ID:             MetricSentiment,
		Label:          "Sentiment score",
		Kind:           KindCompound,
		SecondaryLabel: "Positive chats %",
		Suffix:         "positive",
	},
	{ID: MetricQualityScore, Label: "Quality score", Kind: KindDualEndpoint},
	{ID: MetricAnnotationResult, Label: "Annotation result", Kind: KindSeverityLabel},
	{ID: MetricCostPerChat, Label: "Cost per chat", Kind: KindPassthrough},
	{ID: MetricPolicyCompliance, Label: "Policy compliance %", Kind: KindRoundedPercent},
}

// Registry returns all metric descriptors in default row order.
func Registry() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the descriptor for the given metric ID.
func Lookup(id string) (Descriptor, bool) {
	for _, d := range registry {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}
