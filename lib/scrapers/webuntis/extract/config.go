package extract

import "dario.cat/mergo"

// Rules are the selectors tried for one kind of record, in priority order,
// and the keywords scanned for when none of the selectors match.
type Rules struct {
	Selectors []string `json:"selectors"`
	// the timetable has no keyword fallback, keywords given for it are
	// ignored
	Keywords []string `json:"keywords"`
}

type Config struct {
	Absences  Rules `json:"absences"`
	Exams     Rules `json:"exams"`
	Homework  Rules `json:"homework"`
	Timetable Rules `json:"timetable"`
}

func DefaultConfig() Config {
	return Config{
		Absences: Rules{
			Selectors: []string{
				"table.list tr:not(.header)",
				".absence-row",
				".datarow",
				"tbody tr",
				".list-item",
			},
			Keywords: []string{
				"abwesen",
				"fehlzeit",
				"krank",
				"absent",
				"entschuldigt",
				"unentschuldigt",
			},
		},
		Exams: Rules{
			Selectors: []string{
				".exam-row",
				".klausur",
				"tr[class*='exam']",
				".yellow",
				"[style*='yellow']",
				".highlight",
			},
			Keywords: []string{
				"klausur",
				"prüfung",
				"exam",
				"test",
			},
		},
		Homework: Rules{
			Selectors: []string{
				".homework-row",
				".hausaufgabe",
				"tr[class*='homework']",
				".assignment",
			},
			Keywords: []string{
				"hausaufgabe",
				"aufgabe",
				"homework",
				"assignment",
			},
		},
		Timetable: Rules{
			Selectors: []string{
				".timetable-period",
				".period",
				".lesson",
				"td[class*='period']",
				"tr.datarow td",
			},
		},
	}
}

// withDefaults fills every empty rule list of config from DefaultConfig.
func withDefaults(config Config) (Config, error) {
	err := mergo.Merge(&config, DefaultConfig())
	return config, err
}
