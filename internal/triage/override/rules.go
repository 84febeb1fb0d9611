package override

// builtinRules returns the default override set. Continuous NLI scores are
// noisy around domain jargon (clinical-trial language, multi-year energy
// contracts), so these rules correct systematic misclassifications without
// retraining. New categories are added here or via configuration, never in
// pipeline control flow.
func builtinRules() []Entry {
	return []Entry{
		{Category: "pharma_trials", Outcome: ForceMaterial, Pattern: `\b(?:phase\s+(?:[1-3]|i{1,3})[ab]?\b|clinical\s+trial|fda\s+(?:approval|clearance)|breakthrough\s+therapy|top-?line\s+(?:data|results)|nda\s+(?:submission|filing))`},
		{Category: "major_infrastructure", Outcome: ForceMaterial, Pattern: `\b(?:multi-?year|\d+\s*-?\s*year)\b[^.]*\b(?:contract|agreement|deal)\b|\b(?:grid|pipeline|data\s*center|transmission\s+line)\b[^.]*\b(?:contract|buildout|expansion)\b`},
		{Category: "regulatory_approval", Outcome: ForceMaterial, Pattern: `\b(?:sec|ftc|doj|fcc|ema)\b[^.]*\b(?:approv\w*|clear\w*|authoriz\w*)\b|\bantitrust\s+(?:approval|clearance)\b`},
		{Category: "guidance_withdrawal", Outcome: ForceMaterial, Pattern: `\b(?:withdraw\w*|suspend\w*|pull\w*|cut\w*|slash\w*)\b[^.]*\bguidance\b|\bguidance\b[^.]*\b(?:withdrawn|suspended)\b`},
		{Category: "routine_dividend", Outcome: ForceRoutine, Pattern: `\b(?:declares?|announces?)\b[^.]*\b(?:quarterly|regular|monthly)\b[^.]*\bdividend\b`},
		{Category: "share_buyback_completion", Outcome: ForceRoutine, Pattern: `\b(?:completes?|concludes?|finishe[sd])\b[^.]*\b(?:share\s+)?(?:buyback|repurchase)\s+program\b`},
		{Category: "earnings_release", Outcome: ForceNonOpinion, Pattern: `\b(?:reports?|posts?)\b[^.]*\b(?:q[1-4]\b|(?:first|second|third|fourth)[\s-]+quarter\b)[^.]*\b(?:eps|earnings|revenue|results)\b`},
	}
}
