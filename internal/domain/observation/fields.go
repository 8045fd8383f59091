package observation

// Closed enumerations for the categorical fields. These are exhaustive
// lists; membership is exact, with no fuzzy or case-insensitive matching.
var (
	searchTypes = []any{
		"Person search",
		"Person Vehicle search",
		"Vehicle search",
	}

	genders = []any{"Male", "Female"}

	legislations = []any{
		"Misuse of Drugs Act 1971 (section 23)",
		"Police and Criminal Evidence Act 1984 (section 1)",
		"Criminal Justice and Public Order Act 1994 (section 60)",
		"Firearms Act 1968 (section 47)",
		"Criminal Justice Act 1988 (section 139B)",
		"Poaching Prevention Act 1862 (section 2)",
		"Psychoactive Substances Act 2016 (s36(2))",
		"Wildlife and Countryside Act 1981 (section 19)",
		"Police and Criminal Evidence Act 1984 (section 6)",
		"Aviation Security Act 1982 (section 27(1))",
		"Customs and Excise Management Act 1979 (section 163)",
		"Crossbows Act 1987 (section 4)",
		"Psychoactive Substances Act 2016 (s37(2))",
		"Protection of Badgers Act 1992 (section 11)",
		"Public Stores Act 1875 (section 6)",
		"Conservation of Seals Act 1970 (section 4)",
		"Deer Act 1991 (section 12)",
		"Other",
	}

	searchObjects = []any{
		"Controlled drugs",
		"Offensive weapons",
		"Stolen goods",
		"Article for use in theft",
		"Evidence of offences under the Act",
		"Anything to threaten or harm anyone",
		"Articles for use in criminal damage",
		"Firearms",
		"Fireworks",
		"Psychoactive substances",
		"Detailed object of search unavailable",
		"Game or poaching equipment",
		"Evidence of wildlife offences",
		"Goods on which duty has not been paid etc.",
		"Crossbows",
		"Seals or hunting equipment",
		"Other",
	}

	ageRanges = []any{"18-24", "10-17", "25-34", "over 34", "under 10"}

	ethnicities = []any{"White", "Black", "Asian", "Other", "Mixed"}

	stations = []any{
		"merseyside",
		"essex",
		"thames-valley",
		"west-yorkshire",
		"hampshire",
		"hertfordshire",
		"kent",
		"south-yorkshire",
		"surrey",
		"avon-and-somerset",
		"btp",
		"lancashire",
		"west-mercia",
		"devon-and-cornwall",
		"staffordshire",
		"nottinghamshire",
		"northumbria",
		"sussex",
		"north-wales",
		"lincolnshire",
		"leicestershire",
		"greater-manchester",
		"cheshire",
		"norfolk",
		"dyfed-powys",
		"bedfordshire",
		"humberside",
		"city-of-london",
		"northamptonshire",
		"suffolk",
		"warwickshire",
		"gloucestershire",
		"derbyshire",
		"dorset",
		"durham",
		"north-yorkshire",
		"cumbria",
		"cleveland",
		"wiltshire",
		"cambridgeshire",
		"gwent",
		"Other",
	}

	policingOperation = []any{true, false}
)

// Geographic envelope of the service area.
var (
	latitudeRange  = Range{Min: 49, Max: 58, ZeroIsMissing: true}
	longitudeRange = Range{Min: -9, Max: 2, ZeroIsMissing: true}
)

// Calendar domains for the caller-supplied temporal fields of the nested
// variant.
var (
	hourRange  = Range{Min: 0, Max: 23}
	monthRange = Range{Min: 1, Max: 12}
)

// FlatSchema describes the legacy flat payload: the raw fields sit beside
// the observation id and the timestamp arrives as a raw Date string.
func FlatSchema() *Schema {
	return &Schema{
		Name:      "flat",
		IDField:   "observation_id",
		DateField: "Date",
		Fields: []Field{
			{Name: "observation_id", Kind: KindAny},
			{Name: "Type", Kind: KindString, Enum: searchTypes},
			{Name: "Date", Kind: KindString},
			{Name: "Part of a policing operation", Kind: KindBool, Enum: policingOperation},
			{Name: "Latitude", Kind: KindFloat, Range: &latitudeRange},
			{Name: "Longitude", Kind: KindFloat, Range: &longitudeRange},
			{Name: "Gender", Kind: KindString, Enum: genders},
			{Name: "Legislation", Kind: KindString, Enum: legislations},
			{Name: "Object of search", Kind: KindString, Enum: searchObjects},
			{Name: "Age range", Kind: KindString, Enum: ageRanges},
			{Name: "Officer-defined ethnicity", Kind: KindString, Enum: ethnicities},
			{Name: "station", Kind: KindString, Enum: stations},
		},
	}
}

// NestedSchema describes the probability-emitting variant: raw fields are
// nested under "observation" and the caller precomputes hour and month
// instead of sending a timestamp.
func NestedSchema() *Schema {
	return &Schema{
		Name:      "nested",
		IDField:   "observation_id",
		NestedKey: "observation",
		Fields: []Field{
			{Name: "Type", Kind: KindString, Enum: searchTypes},
			{Name: "Part of a policing operation", Kind: KindBool, Enum: policingOperation},
			{Name: "Latitude", Kind: KindFloat, Range: &latitudeRange},
			{Name: "Longitude", Kind: KindFloat, Range: &longitudeRange},
			{Name: "Gender", Kind: KindString, Enum: genders},
			{Name: "Legislation", Kind: KindString, Enum: legislations},
			{Name: "Object of search", Kind: KindString, Enum: searchObjects},
			{Name: "Age range", Kind: KindString, Enum: ageRanges},
			{Name: "Officer-defined ethnicity", Kind: KindString, Enum: ethnicities},
			{Name: "station", Kind: KindString, Enum: stations},
			{Name: "hour", Kind: KindInt, Range: &hourRange},
			{Name: "month", Kind: KindInt, Range: &monthRange},
		},
	}
}
