package catalog

// Default returns the built-in target table: drift and race platforms with
// steady demand in the destination market. Figures are conservative estimates
// from UK classifieds research; override with a MODELS_FILE when they drift.
func Default() Catalog {
	c := Catalog{
		// High volume plays: smaller margins, easier to find.
		"bmw_e46_330": {
			SearchTerms: []string{"BMW 330i", "BMW 330ci", "E46 330", "330i Sport", "330ci M Sport"},
			MaxPrice:    10000,
			Markup:      1000,
			MinProfit:   200,
		},
		"lexus_is200": {
			SearchTerms: []string{"Lexus IS200", "Lexus IS300", "IS200 Sport", "IS200 manual"},
			MaxPrice:    6000,
			Markup:      700,
			MinProfit:   100,
		},
		"bmw_e46_320": {
			SearchTerms: []string{"BMW 320i", "BMW 320ci", "E46 320", "320i Sport"},
			MaxPrice:    7000,
			Markup:      600,
			MinProfit:   100,
		},
		"mazda_mx5": {
			SearchTerms: []string{"Mazda MX-5", "Mazda MX5", "Miata", "MX5 1.8"},
			MaxPrice:    8000,
			Markup:      600,
			MinProfit:   100,
		},
		"nissan_350z": {
			SearchTerms: []string{"Nissan 350Z", "350Z GT", "Nissan 370Z", "350Z manual"},
			MaxPrice:    18000,
			Markup:      1500,
			MinProfit:   500,
		},

		// Medium value.
		"bmw_e36_328": {
			SearchTerms: []string{"BMW E36 328i", "E36 328i Sport", "E36 328"},
			MaxPrice:    8000,
			Markup:      800,
			MinProfit:   200,
		},
		"honda_civic_type_r": {
			SearchTerms: []string{"Honda Civic Type R", "Civic Type-R EP3", "Civic Type-R FN2", "EP3 Type R"},
			MaxPrice:    16000,
			Markup:      1500,
			MinProfit:   500,
		},
		"mazda_rx8": {
			SearchTerms: []string{"Mazda RX-8", "Mazda RX8", "RX8 R3"},
			MaxPrice:    8000,
			Markup:      700,
			MinProfit:   200,
		},

		// High value: rarer, bigger margins.
		"bmw_e36_m3": {
			SearchTerms: []string{"BMW E36 M3", "E36 M3 Evolution", "E36 M3 3.2", "M3 E36"},
			MaxPrice:    22000,
			Markup:      2500,
			MinProfit:   1200,
		},
		"nissan_200sx": {
			SearchTerms: []string{"Nissan 200SX", "Nissan Silvia", "200SX S13", "200SX S14", "200SX S15", "Silvia S14"},
			MaxPrice:    20000,
			Markup:      2000,
			MinProfit:   1000,
		},

		// Premium JDM.
		"nissan_skyline_r33": {
			SearchTerms: []string{"Nissan Skyline R33", "R33 GTS-T", "Skyline R33", "R33 GTR"},
			MaxPrice:    35000,
			Markup:      3500,
			MinProfit:   2000,
		},
		"nissan_skyline_r32": {
			SearchTerms: []string{"Nissan Skyline R32", "R32 GTR", "R32 GTS-T", "Skyline R32"},
			MaxPrice:    45000,
			Markup:      4000,
			MinProfit:   2500,
		},
		"mazda_rx7_fd": {
			SearchTerms: []string{"Mazda RX-7 FD", "Mazda RX7 FD3S", "RX-7 Import", "FD RX7"},
			MaxPrice:    35000,
			Markup:      3500,
			MinProfit:   2000,
		},
		"mazda_rx7_fc": {
			SearchTerms: []string{"Mazda RX-7 FC", "Mazda RX7 FC3S", "FC RX7"},
			MaxPrice:    12000,
			Markup:      1200,
			MinProfit:   600,
		},
		"toyota_supra": {
			SearchTerms: []string{"Toyota Supra", "Supra MK4", "Supra Twin Turbo", "Supra NA"},
			MaxPrice:    60000,
			Markup:      5000,
			MinProfit:   3000,
		},
	}

	for key, rule := range c {
		rule.Key = key
		c[key] = rule
	}
	return c
}
