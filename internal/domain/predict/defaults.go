package predict

// defaultArtifact returns the built-in fallback weights used when no
// model artifact path is configured. The weights are coarse but give the
// service a deterministic end-to-end scoring path out of the box.
func defaultArtifact() *Artifact {
	return &Artifact{
		Columns: []ArtifactColumn{
			{Name: "Type", Kind: "str"},
			{Name: "Part of a policing operation", Kind: "bool"},
			{Name: "Latitude", Kind: "float"},
			{Name: "Longitude", Kind: "float"},
			{Name: "Gender", Kind: "str"},
			{Name: "Legislation", Kind: "str"},
			{Name: "Object of search", Kind: "str"},
			{Name: "Age range", Kind: "str"},
			{Name: "Officer-defined ethnicity", Kind: "str"},
			{Name: "station", Kind: "str"},
			{Name: "hour", Kind: "int"},
			{Name: "month", Kind: "int"},
		},
		Intercept: -1.35,
		Numeric: map[string]float64{
			"Latitude":  0.004,
			"Longitude": -0.011,
			"hour":      0.018,
			"month":     0.002,
		},
		Flags: map[string]float64{
			"Part of a policing operation": 0.21,
		},
		Categorical: map[string]map[string]float64{
			"Type": {
				"Person search":         0.12,
				"Person Vehicle search": 0.31,
				"Vehicle search":        -0.08,
			},
			"Gender": {
				"Male":   0.09,
				"Female": -0.14,
			},
			"Legislation": {
				"Misuse of Drugs Act 1971 (section 23)":                   0.42,
				"Police and Criminal Evidence Act 1984 (section 1)":       0.18,
				"Criminal Justice and Public Order Act 1994 (section 60)": -0.22,
				"Firearms Act 1968 (section 47)":                          0.05,
			},
			"Object of search": {
				"Controlled drugs":        0.37,
				"Offensive weapons":       0.11,
				"Stolen goods":            0.26,
				"Firearms":                -0.05,
				"Psychoactive substances": 0.08,
			},
			"Age range": {
				"10-17":    -0.12,
				"18-24":    0.16,
				"25-34":    0.10,
				"over 34":  -0.03,
				"under 10": -0.40,
			},
			"Officer-defined ethnicity": {
				"White": 0.02,
				"Black": 0.01,
				"Asian": -0.01,
			},
			"station": {
				"merseyside":         0.19,
				"btp":                0.33,
				"city-of-london":     0.24,
				"greater-manchester": 0.07,
				"thames-valley":      -0.06,
			},
		},
		Threshold: defaultThreshold,
	}
}
