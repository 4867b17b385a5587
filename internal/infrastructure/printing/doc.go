// Package printing renders recommendation reports as PDF documents.
//
// Reports are produced in two steps. RecommendationReports binds a
// recommendation to an HTML template, and a PDFRenderer (ChromedpRenderer in
// production) prints that HTML through a headless Chrome instance.
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true})
//	if err != nil {
//	    return err
//	}
//	defer renderer.Close()
//
//	reports, err := NewRecommendationReports(renderer, logger)
//	if err != nil {
//	    return err
//	}
//	pdf, err := reports.RenderRecommendation(ctx, rec)
package printing
