package extract

// LinkedInNote flags profiles recovered without authenticated access.
const LinkedInNote = "Limited extraction - LinkedIn requires authentication for full access"

// scholarProfile reads a Google Scholar profile page. Linked data wins when
// it names the person; otherwise the well-known Scholar element IDs are
// used directly.
func scholarProfile(doc *Document, pageURL string) *Profile {
	if ld := fromJSONLD(doc); ld != nil && ld.Name != "" {
		return ld.profile(SourceAcademicIndex, pageURL)
	}

	name := doc.SelectText("#gsc_prf_in")
	affiliation := doc.SelectText(".gsc_prf_il")

	var interests []string
	if div := doc.Select("#gsc_prf_int"); div != nil {
		for _, a := range AnchorsIn(div) {
			interests = append(interests, a.Text)
		}
	}

	var pubs []Publication
	for _, row := range doc.SelectAll("tr.gsc_a_tr") {
		if len(pubs) >= maxPublications {
			break
		}
		title := FirstIn(row, "a.gsc_a_at")
		if title == nil {
			continue
		}
		pubs = append(pubs, Publication{
			Title: Text(title),
			Link:  "https://scholar.google.com" + attrVal(title, "href"),
		})
	}

	part := &Partial{Name: name, Bio: affiliation, Expertise: interests, Publications: pubs}
	if affiliation != "" {
		part.Affiliations = []string{affiliation}
	}
	return withUnknownFallback(part.profile(SourceAcademicIndex, pageURL))
}

// linkedinProfile reads a public LinkedIn page. Without authentication the
// page exposes little, so the result carries a caveat note.
func linkedinProfile(doc *Document, pageURL string) *Profile {
	if ld := fromJSONLD(doc); ld != nil && ld.Name != "" {
		return ld.profile(SourceProfessionalNetwork, pageURL)
	}

	name := doc.SelectText("h1", ".top-card-layout__title")
	headline := doc.SelectText(".top-card-layout__headline")

	part := &Partial{
		Name:      name,
		Bio:       headline,
		Expertise: vocabularyMatches(CleanText(doc)),
	}
	if headline != "" {
		part.Affiliations = []string{headline}
	}
	prof := withUnknownFallback(part.profile(SourceProfessionalNetwork, pageURL))
	prof.Note = LinkedInNote
	return prof
}

func withUnknownFallback(p *Profile) *Profile {
	if p.Name == "" {
		p.Name = "Unknown"
	}
	return p
}
