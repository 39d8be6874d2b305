package bible

// TranslationInfo describes one installable translation file.
type TranslationInfo struct {
	ID   string
	Name string
}

// Catalog lists the translations the reader knows how to load, in menu order.
var Catalog = []TranslationInfo{
	{ID: "en_kjv.json", Name: "English - King James Version (KJV)"},
	{ID: "en_bbe.json", Name: "English - Bible in Basic English (BBE)"},
	{ID: "zh_cuv.json", Name: "Chinese - Chinese Union Version (CUV)"},
	{ID: "es_rvr.json", Name: "Spanish - Reina Valera Revisada (RVR)"},
	{ID: "fr_apee.json", Name: "French - Louis Segond (APEE)"},
	{ID: "ko_ko.json", Name: "Korean - Korean Version"},
}

// TranslationName returns the display name for a translation id, falling
// back to the id itself for files outside the catalog.
func TranslationName(id string) string {
	for _, t := range Catalog {
		if t.ID == id {
			return t.Name
		}
	}
	return id
}

// bookNames maps a book abbreviation to its English display name.
var bookNames = map[string]string{
	"gn": "Genesis", "ex": "Exodus", "lv": "Leviticus", "nm": "Numbers", "dt": "Deuteronomy",
	"js": "Joshua", "jud": "Judges", "rt": "Ruth", "1sm": "1 Samuel", "2sm": "2 Samuel",
	"1kgs": "1 Kings", "2kgs": "2 Kings", "1ch": "1 Chronicles", "2ch": "2 Chronicles",
	"ezr": "Ezra", "ne": "Nehemiah", "et": "Esther", "job": "Job", "ps": "Psalms",
	"prv": "Proverbs", "ec": "Ecclesiastes", "so": "Song of Solomon", "is": "Isaiah",
	"jr": "Jeremiah", "lm": "Lamentations", "ez": "Ezekiel", "dn": "Daniel",
	"ho": "Hosea", "jl": "Joel", "am": "Amos", "ob": "Obadiah", "jn": "Jonah",
	"mi": "Micah", "na": "Nahum", "hk": "Habakkuk", "zp": "Zephaniah", "hg": "Haggai",
	"zc": "Zechariah", "ml": "Malachi", "mt": "Matthew", "mk": "Mark", "lk": "Luke",
	"jo": "John", "act": "Acts", "rm": "Romans", "1co": "1 Corinthians", "2co": "2 Corinthians",
	"gl": "Galatians", "eph": "Ephesians", "ph": "Philippians", "cl": "Colossians",
	"1ts": "1 Thessalonians", "2ts": "2 Thessalonians", "1tm": "1 Timothy", "2tm": "2 Timothy",
	"tt": "Titus", "phm": "Philemon", "hb": "Hebrews", "jm": "James", "1pe": "1 Peter",
	"2pe": "2 Peter", "1jo": "1 John", "2jo": "2 John", "3jo": "3 John", "jd": "Jude",
	"re": "Revelation",
}

// BookName returns the display name for a book abbreviation. Unknown
// abbreviations are returned unchanged so the caller always has something
// to show.
func BookName(abbrev string) string {
	if name, ok := bookNames[abbrev]; ok {
		return name
	}
	return abbrev
}
