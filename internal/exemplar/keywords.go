package exemplar

// keyword is a lowercase substring trigger and the tags it contributes
type keyword struct {
	match string
	tags  []string
}

// keywords drives target tag detection. Matching is plain substring search
// on the lowercased question, so short triggers such as "vs" or "mali" can
// fire inside longer words.
var keywords = []keyword{
	{"connaissance", []string{"M-KAP", "PEO"}},
	{"savoir", []string{"M-KAP", "PEO"}},
	{"pratique", []string{"M-KAP", "PEO"}},
	{"attitudes", []string{"M-KAP", "PEO"}},
	{"adhérence", []string{"M-ADH", "PEO"}},
	{"observance", []string{"M-ADH", "PEO"}},
	{"compliance", []string{"M-ADH", "PEO"}},
	{"vécu", []string{"SPIDER", "qualitative"}},
	{"perception", []string{"SPIDER", "qualitative"}},
	{"expérience", []string{"SPIDER", "qualitative"}},
	{"barrières", []string{"SPIDER", "qualitative"}},
	{"prévalence", []string{"M-PREV", "PICO"}},
	{"incidence", []string{"M-PREV", "PICO"}},
	{"facteurs de risque", []string{"M-RISK", "PICO"}},
	{"déterminants", []string{"M-RISK", "PICO"}},
	{"mortalité", []string{"M-MORT", "PICO"}},
	{"morbidité", []string{"M-MORT", "PICO"}},
	{"survie", []string{"M-MORT", "PICO"}},
	{"traitement", []string{"M-THER", "PICO"}},
	{"prise en charge", []string{"M-THER", "PICO"}},
	{"efficacité", []string{"PICO", "comparison"}},
	{"vs", []string{"PICO", "comparison"}},
	{"éducation", []string{"M-EDU", "PICO"}},
	{"pairs", []string{"M-PEER", "PEO"}},
	{"influence sociale", []string{"M-PEER", "PEO"}},

	// geography
	{"afrique", []string{"geo_africa"}},
	{"bénin", []string{"geo_africa"}},
	{"mali", []string{"geo_africa"}},
	{"sénégal", []string{"geo_africa"}},
	{"cameroun", []string{"geo_africa"}},
	{"togo", []string{"geo_africa"}},
	{"niger", []string{"geo_africa"}},
	{"rwanda", []string{"geo_africa"}},
	{"éthiopie", []string{"geo_africa"}},
	{"burkina", []string{"geo_africa"}},
	{"côte d'ivoire", []string{"geo_africa"}},
}

// frameworks are the tags that identify an exemplar's framework, checked
// in the exemplar's own tag order
var frameworks = map[string]bool{
	"PEO":    true,
	"PICO":   true,
	"SPIDER": true,
	"PICOTS": true,
}
