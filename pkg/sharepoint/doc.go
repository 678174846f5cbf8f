// Package sharepoint is a client for the SharePoint REST API in its verbose
// OData JSON form.
//
// # Overview
//
// A Site addresses one site collection and sends every request through
// Site.Query. Responses are mapped into typed objects by the type
// descriptor the server embeds in each entity ("__metadata.type"). Types
// without a registered constructor become a GenericObject that remembers
// the type name.
//
// Mutating requests carry a form digest. The site acquires it from the
// contextinfo endpoint on first use, keeps it while it is fresh and
// re-acquires it once it expires. Concurrent callers share one
// acquisition.
//
// # Usage
//
//	site, err := sharepoint.NewSite(sharepoint.Config{
//	    ServerURL: "contoso.sharepoint.com",
//	    Name:      "engineering",
//	    Session:   session.NewStatic("FedAuth=..."),
//	})
//	if err != nil {
//	    return err
//	}
//
//	res, err := site.Query(ctx, "GET", "lists/getbytitle('Documents')/items", nil)
//	if err != nil {
//	    return err
//	}
//	for _, obj := range res.All() {
//	    fmt.Println(obj.TypeName(), obj.Data()["Title"])
//	}
//
// # Errors
//
// Query returns a *RequestError for transport failures, undecodable bodies
// and error statuses without a JSON body, and a *DataError when the server
// encodes an error in the response. An unregistered namespace in a type
// descriptor yields a *LookupError.
//
// # Custom types
//
//	reg := sharepoint.DefaultRegistry()
//	_ = reg.Register("SP.Publishing.PageLayout", func(s *sharepoint.Site, d map[string]any) (sharepoint.Object, error) {
//	    return sharepoint.NewGenericObject(s, "PageLayout", d)
//	})
package sharepoint
