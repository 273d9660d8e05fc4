// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/trialscope/internal/httputil"
	"github.com/pdiddy/trialscope/pkg/types"
)

// E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	pubmedSearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedFetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// PubMedAdapter queries PubMed through the NCBI E-utilities: esearch
// resolves the filter to a PMID list, efetch loads the article records.
type PubMedAdapter struct {
	Client *http.Client
}

// Name returns the registry identifier.
func (a *PubMedAdapter) Name() string { return NamePubMed }

// Fetch runs the esearch/efetch pair and returns paper candidates. An
// empty PMID list is a success with no candidates.
func (a *PubMedAdapter) Fetch(ctx context.Context, filter types.StructuredFilter, cfg types.RetrievalConfig) ([]types.SourceCandidate, error) {
	pmids, err := a.searchPMIDs(ctx, filter, cfg)
	if err != nil {
		return nil, Classify(NamePubMed, err)
	}
	if len(pmids) == 0 {
		return []types.SourceCandidate{}, nil
	}

	articles, err := a.fetchArticles(ctx, pmids, cfg)
	if err != nil {
		return nil, Classify(NamePubMed, err)
	}

	candidates := make([]types.SourceCandidate, 0, len(articles))
	for _, art := range articles {
		pmid := art.Medline.PMID
		if pmid == "" {
			continue
		}

		rec := types.PaperRecord{
			Title:    art.Medline.Article.Title,
			Journal:  art.Medline.Article.Journal.Title,
			Abstract: strings.Join(art.Medline.Article.Abstract.Texts, " "),
			URL:      fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", pmid),
			Keywords: art.Medline.Keywords.Keywords,
		}
		for _, au := range art.Medline.Article.Authors.Authors {
			name := strings.TrimSpace(au.ForeName + " " + au.LastName)
			if name != "" {
				rec.Authors = append(rec.Authors, name)
			}
		}
		rec.PublicationDate = art.Medline.Article.Journal.Issue.PubDate.format()
		for _, id := range art.PubmedData.ArticleIDs.IDs {
			if id.Type == "doi" {
				rec.DOI = id.Value
			}
		}

		candidates = append(candidates, types.SourceCandidate{
			Source:   NamePubMed,
			NativeID: pmid,
			Kind:     types.KindPaper,
			Paper:    &rec,
		})
	}
	return candidates, nil
}

func (a *PubMedAdapter) searchPMIDs(ctx context.Context, filter types.StructuredFilter, cfg types.RetrievalConfig) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {buildPubMedTerm(filter)},
		"retmax":  {fmt.Sprintf("%d", filter.Limit())},
		"retmode": {"json"},
		"sort":    {"relevance"},
	}
	if cfg.NCBIAPIKey != "" {
		params.Set("api_key", cfg.NCBIAPIKey)
	}
	if cfg.NCBIEmail != "" {
		params.Set("email", cfg.NCBIEmail)
	}

	var resp pubmedSearchResponse
	if err := httputil.GetJSON(ctx, a.Client, pubmedSearchBase+"?"+params.Encode(), cfg.UserAgent, &resp); err != nil {
		return nil, err
	}
	return resp.Result.IDList, nil
}

func (a *PubMedAdapter) fetchArticles(ctx context.Context, pmids []string, cfg types.RetrievalConfig) ([]pubmedArticle, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"xml"},
	}
	if cfg.NCBIAPIKey != "" {
		params.Set("api_key", cfg.NCBIAPIKey)
	}

	var set pubmedArticleSet
	if err := httputil.GetXML(ctx, a.Client, pubmedFetchBase+"?"+params.Encode(), cfg.UserAgent, &set); err != nil {
		return nil, err
	}
	return set.Articles, nil
}

// buildPubMedTerm translates the filter into an E-utilities term string,
// restricted to clinical trial publications.
func buildPubMedTerm(filter types.StructuredFilter) string {
	var parts []string
	if filter.Condition != "" {
		parts = append(parts, filter.Condition+"[Title/Abstract]")
	}
	if filter.Intervention != "" {
		parts = append(parts, filter.Intervention+"[Title/Abstract]")
	}
	parts = append(parts, "Clinical Trial[Publication Type]")
	if !filter.DateFrom.IsZero() {
		from := filter.DateFrom.Format("2006")
		to := "3000"
		if !filter.DateTo.IsZero() {
			to = filter.DateTo.Format("2006")
		}
		parts = append(parts, fmt.Sprintf("%s:%s[pdat]", from, to))
	}
	return strings.Join(parts, " AND ")
}

// E-utilities esearch JSON structures.
type pubmedSearchResponse struct {
	Result pubmedSearchResult `json:"esearchresult"`
}

type pubmedSearchResult struct {
	IDList []string `json:"idlist"`
}

// E-utilities efetch XML structures.
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Medline    pubmedMedline `xml:"MedlineCitation"`
	PubmedData pubmedData    `xml:"PubmedData"`
}

type pubmedMedline struct {
	PMID     string            `xml:"PMID"`
	Article  pubmedArticleData `xml:"Article"`
	Keywords pubmedKeywordList `xml:"KeywordList"`
}

type pubmedKeywordList struct {
	Keywords []string `xml:"Keyword"`
}

type pubmedArticleData struct {
	Title    string           `xml:"ArticleTitle"`
	Abstract pubmedAbstract   `xml:"Abstract"`
	Authors  pubmedAuthorList `xml:"AuthorList"`
	Journal  pubmedJournal    `xml:"Journal"`
}

type pubmedAbstract struct {
	Texts []string `xml:"AbstractText"`
}

type pubmedAuthorList struct {
	Authors []pubmedAuthor `xml:"Author"`
}

type pubmedAuthor struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
}

type pubmedJournal struct {
	Title string             `xml:"Title"`
	Issue pubmedJournalIssue `xml:"JournalIssue"`
}

type pubmedJournalIssue struct {
	PubDate pubmedPubDate `xml:"PubDate"`
}

type pubmedPubDate struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

// format renders the PubDate as YYYY-MM-DD, defaulting missing parts to
// "01". PubMed serves months both numerically and as "Jan" abbreviations.
func (d pubmedPubDate) format() string {
	if d.Year == "" {
		return ""
	}
	month := "01"
	if d.Month != "" {
		if t, err := time.Parse("Jan", d.Month); err == nil {
			month = t.Format("01")
		} else if t, err := time.Parse("1", d.Month); err == nil {
			month = t.Format("01")
		}
	}
	day := "01"
	if d.Day != "" {
		if t, err := time.Parse("2", d.Day); err == nil {
			day = t.Format("02")
		}
	}
	return d.Year + "-" + month + "-" + day
}

type pubmedData struct {
	ArticleIDs pubmedArticleIDList `xml:"ArticleIdList"`
}

type pubmedArticleIDList struct {
	IDs []pubmedArticleID `xml:"ArticleId"`
}

type pubmedArticleID struct {
	Type  string `xml:"IdType,attr"`
	Value string `xml:",chardata"`
}
