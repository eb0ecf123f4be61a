package extract

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const janeDoePage = `<html>
<head>
<title>Completely Different Person - Example University</title>
<script type="application/ld+json">
{"@type": "Person", "name": "Jane Doe", "description": "Roboticist at Example University.", "knowsAbout": ["Robotics"], "affiliation": "Example University"}
</script>
</head>
<body><h1>Not The Name</h1><p>Robotics lab landing page.</p></body>
</html>`

func fixedFetch(pages map[string]string) FetchFunc {
	return func(_ context.Context, pageURL string) ([]byte, error) {
		page, ok := pages[pageURL]
		if !ok {
			return nil, fmt.Errorf("no fixture for %s", pageURL)
		}
		return []byte(page), nil
	}
}

func TestExtractStructuredShortCircuit(t *testing.T) {
	pipeline := NewPipeline(WithFetchFunc(fixedFetch(map[string]string{
		"https://example.org/jane": janeDoePage,
	})))

	prof := pipeline.Extract(context.Background(), "https://example.org/jane")

	require.Empty(t, prof.Error)
	require.Equal(t, "Jane Doe", prof.Name)
	require.Equal(t, []string{"Robotics"}, prof.ExpertiseAreas)
	require.Equal(t, "Roboticist at Example University.", prof.Bio)
	require.Equal(t, []string{"Example University"}, prof.Affiliations)
	require.Equal(t, SourceWebsite, prof.Source)
	require.Equal(t, "https://example.org/jane", prof.URL)

	// The heading and title never contribute once linked data names the person.
	require.NotEqual(t, "Not The Name", prof.Name)
	require.NotContains(t, prof.Name, "Completely Different Person")
}

func TestExtractOpenGraphFillsGaps(t *testing.T) {
	page := `<html><head>
<meta property="og:title" content="Alex Smith">
<meta property="og:description" content="Researcher working on machine learning and public health modelling at scale.">
</head>
<body><p>Alex studies machine learning and public health.</p></body></html>`
	pipeline := NewPipeline(WithFetchFunc(fixedFetch(map[string]string{"https://example.org/alex": page})))

	prof := pipeline.Extract(context.Background(), "https://example.org/alex")

	require.Equal(t, "Alex Smith", prof.Name)
	require.Contains(t, prof.Bio, "machine learning")
	require.Contains(t, prof.ExpertiseAreas, "Machine Learning")
	require.Contains(t, prof.ExpertiseAreas, "Public Health")
	require.Equal(t, SourceWebsite, prof.Source)
}

func TestExtractHeuristics(t *testing.T) {
	page := `<html><head><title>Dr. Maria Garcia | Faculty</title></head>
<body>
<h1>Dr. Maria Garcia</h1>
<div class="bio">Maria Garcia is a professor of neuroscience who studies memory formation in humans.</div>
<a href="/papers/memory.pdf">Memory consolidation in sleep: a review</a>
<a href="/contact">Contact</a>
</body></html>`
	pipeline := NewPipeline(WithFetchFunc(fixedFetch(map[string]string{"https://uni.example/maria": page})))

	prof := pipeline.Extract(context.Background(), "https://uni.example/maria")

	require.Equal(t, "Dr. Maria Garcia", prof.Name)
	require.Contains(t, prof.Bio, "professor of neuroscience")
	require.Contains(t, prof.ExpertiseAreas, "Neuroscience")
	require.Len(t, prof.Publications, 1)
	require.Equal(t, "Memory consolidation in sleep: a review", prof.Publications[0].Title)
	require.Equal(t, "/papers/memory.pdf", prof.Publications[0].Link)
}

func TestExtractTitleFallbackStripsSuffix(t *testing.T) {
	page := `<html><head><title>John Roe - Personal Site</title></head><body><p>hi</p></body></html>`
	pipeline := NewPipeline(WithFetchFunc(fixedFetch(map[string]string{"https://example.org/john": page})))

	prof := pipeline.Extract(context.Background(), "https://example.org/john")

	require.Equal(t, "John Roe", prof.Name)
}

func TestExtractErrorProfileInvariant(t *testing.T) {
	pipeline := NewPipeline(WithFetchFunc(func(context.Context, string) ([]byte, error) {
		return nil, errors.New("connection refused")
	}))

	prof := pipeline.Extract(context.Background(), "https://down.example/p")

	require.Equal(t, SourceError, prof.Source)
	require.NotEmpty(t, prof.Error)
	require.Equal(t, "Unknown", prof.Name)
	require.Empty(t, prof.Bio)
	require.Empty(t, prof.ExpertiseAreas)
	require.Empty(t, prof.Publications)
	require.Empty(t, prof.Affiliations)
}

func TestExtractCachesByURL(t *testing.T) {
	calls := 0
	cache := NewMemoryCache()
	pipeline := NewPipeline(
		WithCache(cache),
		WithFetchFunc(func(_ context.Context, _ string) ([]byte, error) {
			calls++
			return []byte(janeDoePage), nil
		}),
	)

	first := pipeline.Extract(context.Background(), "https://example.org/jane")
	second := pipeline.Extract(context.Background(), "https://example.org/jane")

	require.Equal(t, 1, calls)
	require.Equal(t, first.Name, second.Name)
	require.Equal(t, 1, cache.Len())

	// Cached copies do not alias: mutating one result leaves the cache intact.
	second.ExpertiseAreas[0] = "Tampered"
	third := pipeline.Extract(context.Background(), "https://example.org/jane")
	require.Equal(t, []string{"Robotics"}, third.ExpertiseAreas)
}

func TestExtractDoesNotCacheErrors(t *testing.T) {
	calls := 0
	pipeline := NewPipeline(WithFetchFunc(func(_ context.Context, _ string) ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient timeout")
		}
		return []byte(janeDoePage), nil
	}))

	first := pipeline.Extract(context.Background(), "https://flaky.example/p")
	require.Equal(t, SourceError, first.Source)

	second := pipeline.Extract(context.Background(), "https://flaky.example/p")
	require.Empty(t, second.Error)
	require.Equal(t, "Jane Doe", second.Name)
	require.Equal(t, 2, calls)
}

func TestScholarProfile(t *testing.T) {
	page := `<html><body>
<div id="gsc_prf_in">Ada Lovelace</div>
<div class="gsc_prf_il">Analytical Engines Institute</div>
<div id="gsc_prf_int"><a href="/citations?view_op=search_authors">Computing</a><a href="/citations?view_op=search_authors">Mathematics</a></div>
<table>
<tr class="gsc_a_tr"><td><a class="gsc_a_at" href="/citations?view_op=view_citation&user=a1">Notes on the Analytical Engine</a></td></tr>
<tr class="gsc_a_tr"><td><a class="gsc_a_at" href="/citations?view_op=view_citation&user=a2">On computable operations</a></td></tr>
</table>
</body></html>`
	pipeline := NewPipeline(WithFetchFunc(fixedFetch(map[string]string{
		"https://scholar.google.com/citations?user=ada": page,
	})))

	prof := pipeline.Extract(context.Background(), "https://scholar.google.com/citations?user=ada")

	require.Equal(t, SourceAcademicIndex, prof.Source)
	require.Equal(t, "Ada Lovelace", prof.Name)
	require.Equal(t, "Analytical Engines Institute", prof.Bio)
	require.Equal(t, []string{"Analytical Engines Institute"}, prof.Affiliations)
	require.Equal(t, []string{"Computing", "Mathematics"}, prof.ExpertiseAreas)
	require.Len(t, prof.Publications, 2)
	require.Equal(t, "Notes on the Analytical Engine", prof.Publications[0].Title)
	require.Equal(t, "https://scholar.google.com/citations?view_op=view_citation&user=a1", prof.Publications[0].Link)
}

func TestScholarProfileEmptyPage(t *testing.T) {
	pipeline := NewPipeline(WithFetchFunc(fixedFetch(map[string]string{
		"https://scholar.google.com/citations?user=ghost": "<html><body></body></html>",
	})))

	prof := pipeline.Extract(context.Background(), "https://scholar.google.com/citations?user=ghost")

	require.Equal(t, "Unknown", prof.Name)
	require.Equal(t, SourceAcademicIndex, prof.Source)
	require.Empty(t, prof.Error)
}

func TestLinkedInProfileFallback(t *testing.T) {
	page := `<html><body>
<h1>Priya Patel</h1>
<div class="top-card-layout__headline">Staff Engineer, Cryptography</div>
<p>Working on cryptography and cybersecurity infrastructure.</p>
</body></html>`
	pipeline := NewPipeline(WithFetchFunc(fixedFetch(map[string]string{
		"https://www.linkedin.com/in/priya": page,
	})))

	prof := pipeline.Extract(context.Background(), "https://www.linkedin.com/in/priya")

	require.Equal(t, SourceProfessionalNetwork, prof.Source)
	require.Equal(t, "Priya Patel", prof.Name)
	require.Equal(t, "Staff Engineer, Cryptography", prof.Bio)
	require.Equal(t, []string{"Staff Engineer, Cryptography"}, prof.Affiliations)
	require.Contains(t, prof.ExpertiseAreas, "Cryptography")
	require.Contains(t, prof.ExpertiseAreas, "Cybersecurity")
	require.Equal(t, LinkedInNote, prof.Note)
}

func TestPipelineEnhancesBeforeCaching(t *testing.T) {
	enhancer := NewEnhancer(stubClient{response: `{
		"expertise_areas": ["Robotics", "Control Theory"],
		"enhanced_bio": "Jane Doe leads a robotics group working on control theory for legged robots.",
		"primary_domain": "Robotics",
		"career_level": "Full Professor"
	}`})
	calls := 0
	pipeline := NewPipeline(
		WithEnhancer(enhancer),
		WithFetchFunc(func(_ context.Context, _ string) ([]byte, error) {
			calls++
			return []byte(janeDoePage), nil
		}),
	)

	first := pipeline.Extract(context.Background(), "https://example.org/jane")
	require.True(t, first.AIEnhanced)
	require.Equal(t, "Full Professor", first.CareerLevel)

	// The cache holds the enriched profile, so a hit skips fetch and model.
	second := pipeline.Extract(context.Background(), "https://example.org/jane")
	require.Equal(t, 1, calls)
	require.True(t, second.AIEnhanced)
	require.Equal(t, []string{"Robotics", "Control Theory"}, second.ExpertiseAreas)
}

func TestExpertiseCapAndDedup(t *testing.T) {
	var terms []string
	for i := 0; i < 12; i++ {
		terms = append(terms, fmt.Sprintf("Area %d", i))
	}
	terms = append(terms, "Area 3", "Area 7") // duplicates
	for i := 12; i < 20; i++ {
		terms = append(terms, fmt.Sprintf("Area %d", i))
	}

	part := &Partial{Name: "X", Expertise: terms}
	prof := part.profile(SourceWebsite, "https://example.org/x")

	require.Len(t, prof.ExpertiseAreas, 15)
	seen := map[string]bool{}
	for _, area := range prof.ExpertiseAreas {
		require.False(t, seen[area], "duplicate %q", area)
		seen[area] = true
	}
}

func TestPublicationScanCaps(t *testing.T) {
	body := ""
	for i := 0; i < 40; i++ {
		body += fmt.Sprintf(`<a href="/research/item%d">Research paper number %d here</a>`, i, i)
	}
	doc, err := Parse([]byte("<html><body>" + body + "</body></html>"))
	require.NoError(t, err)

	pubs := publicationAnchors(doc)
	require.Len(t, pubs, maxPublications)
}
