package query

import "net/url"

// PubMedSearchBase is the PubMed web search endpoint
const PubMedSearchBase = "https://pubmed.ncbi.nlm.nih.gov/"

// SearchURL returns the PubMed URL running q
func SearchURL(q string) string {
	return PubMedSearchBase + "?" + url.Values{"term": {q}}.Encode()
}
