package mesh

import "sort"

// whitelist maps a concept tag to its MeSH block. These are the only
// fragments allowed to appear as authoritative in a query.
var whitelist = map[string]string{
	"M-KAP":   `"Health Knowledge, Attitudes, Practice"[MeSH] OR "Clinical Competence"[MeSH] OR "Surveys and Questionnaires"[MeSH] OR "Practice Patterns, Physicians"[MeSH]`,
	"M-ADH":   `"Medication Adherence"[MeSH] OR "Patient Compliance"[MeSH] OR "Treatment Adherence and Compliance"[MeSH]`,
	"M-PEER":  `"Peer Group"[MeSH] OR "Social Support"[MeSH] OR "Social Environment"[MeSH]`,
	"M-PREV":  `"Prevalence"[MeSH] OR "Incidence"[MeSH]`,
	"M-RISK":  `"Risk Factors"[MeSH]`,
	"M-MORT":  `"Mortality"[MeSH] OR "Morbidity"[MeSH]`,
	"M-THER":  `"Disease Management"[MeSH] OR "Therapeutics"[MeSH]`,
	"M-CHRON": `"Chronic Disease"[MeSH]`,
	"M-AFR":   `"Africa"[MeSH] OR "Africa South of the Sahara"[MeSH]`,
	"M-HCP":   `"Health Personnel"[MeSH] OR "Physicians"[MeSH] OR "Nurses"[MeSH]`,
	"M-EDU":   `"Health Education"[MeSH] OR "Patient Education as Topic"[MeSH]`,
}

// reverse index, fragment -> tag
var whitelisted = func() map[string]string {
	m := make(map[string]string, len(whitelist))
	for tag, fragment := range whitelist {
		m[fragment] = tag
	}
	return m
}()

// Lookup returns the MeSH block for a whitelist tag such as "M-KAP"
func Lookup(tag string) (string, bool) {
	fragment, ok := whitelist[tag]
	return fragment, ok
}

// Authoritative returns fragment unchanged if it is verbatim a whitelisted
// block, or "" otherwise. Matching is exact: no trimming, case folding or
// substring checks.
func Authoritative(fragment string) string {
	if _, ok := whitelisted[fragment]; ok {
		return fragment
	}
	return ""
}

// TagOf returns the whitelist tag of a fragment
func TagOf(fragment string) (string, bool) {
	tag, ok := whitelisted[fragment]
	return tag, ok
}

// Tags lists the whitelist tags in sorted order
func Tags() []string {
	tags := make([]string, 0, len(whitelist))
	for tag := range whitelist {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
