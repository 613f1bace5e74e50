package mapping

// builtinRules is the garden-supply rule set used when no mapping file exists.
var builtinRules = File{
	Default: PresetConfig{Avatar: "host_friendly", Voice: "warm_neutral", DurationSeconds: 30},
	Rules: []RuleConfig{
		{
			Name:         "seaweed",
			Keywords:     []string{"kelp", "seaweed", "algae"},
			PresetConfig: PresetConfig{Avatar: "coastal_grower", Voice: "calm_female", DurationSeconds: 30},
		},
		{
			Name:         "compost",
			Keywords:     []string{"compost", "worm castings", "vermicompost", "manure"},
			PresetConfig: PresetConfig{Avatar: "soil_scientist", Voice: "earthy_male", DurationSeconds: 35},
		},
		{
			Name:         "fertilizer",
			Keywords:     []string{"fertilizer", "bone meal", "blood meal", "fish emulsion", "npk"},
			PresetConfig: PresetConfig{Avatar: "master_gardener", Voice: "confident_male", DurationSeconds: 30},
		},
		{
			Name:         "seeds",
			Pattern:      `\bseeds?\b|\bseedlings?\b`,
			PresetConfig: PresetConfig{Avatar: "urban_gardener", Voice: "upbeat_female", DurationSeconds: 25},
		},
		{
			Name:         "tools",
			Keywords:     []string{"pruner", "shears", "trowel", "hoe", "rake", "watering can"},
			PresetConfig: PresetConfig{Avatar: "tool_expert", Voice: "friendly_male", DurationSeconds: 20},
		},
		{
			Name:         "soil",
			Keywords:     []string{"potting mix", "soil", "perlite", "peat", "coir"},
			PresetConfig: PresetConfig{Avatar: "soil_scientist", Voice: "earthy_male", DurationSeconds: 30},
		},
	},
}

// Default returns a mapper over the built-in rules.
func Default() *Mapper {
	mapper, err := builtinRules.Build()
	if err != nil {
		panic("mapping: invalid built-in rules: " + err.Error())
	}
	return mapper
}
