package sharepoint

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// builtinTypes are registered by DefaultRegistry.
var builtinTypes = map[string]Constructor{
	"SP.ContextWebInformation": func(s *Site, d map[string]any) (Object, error) { return NewContextWebInformation(s, d) },
	"SP.Web":                   func(s *Site, d map[string]any) (Object, error) { return NewWeb(s, d) },
	"SP.List":                  func(s *Site, d map[string]any) (Object, error) { return NewList(s, d) },
	"SP.ListItem":              func(s *Site, d map[string]any) (Object, error) { return NewListItem(s, d) },
	"SP.Folder":                func(s *Site, d map[string]any) (Object, error) { return NewFolder(s, d) },
	"SP.File":                  func(s *Site, d map[string]any) (Object, error) { return NewFile(s, d) },
	"SP.User":                  func(s *Site, d map[string]any) (Object, error) { return NewUser(s, d) },
	"SP.Group":                 func(s *Site, d map[string]any) (Object, error) { return NewGroup(s, d) },
	"SP.Field":                 func(s *Site, d map[string]any) (Object, error) { return NewField(s, d) },
	"SP.View":                  func(s *Site, d map[string]any) (Object, error) { return NewView(s, d) },
	"SP.ContentType":           func(s *Site, d map[string]any) (Object, error) { return NewContentType(s, d) },
	"SP.RoleDefinition":        func(s *Site, d map[string]any) (Object, error) { return NewRoleDefinition(s, d) },
	"Collection(Edm.String)":   func(s *Site, d map[string]any) (Object, error) { return NewCollectionString(s, d) },
	"Collection(Edm.Int32)":    func(s *Site, d map[string]any) (Object, error) { return NewCollectionInteger(s, d) },
}

// ContextWebInformation is returned by the contextinfo endpoint and carries
// the form digest required by mutating requests.
type ContextWebInformation struct {
	Base `mapstructure:"-"`

	FormDigestValue          string `mapstructure:"FormDigestValue"`
	FormDigestTimeoutSeconds int    `mapstructure:"FormDigestTimeoutSeconds"`
	LibraryVersion           string `mapstructure:"LibraryVersion"`
	SiteFullURL              string `mapstructure:"SiteFullUrl"`
	WebFullURL               string `mapstructure:"WebFullUrl"`

	acquiredAt time.Time
	now        func() time.Time
}

func NewContextWebInformation(site *Site, data map[string]any) (*ContextWebInformation, error) {
	c := &ContextWebInformation{now: time.Now}
	if site != nil {
		c.now = site.Now
	}
	if err := populate(site, "ContextWebInformation", data, &c.Base, c); err != nil {
		return nil, err
	}
	c.acquiredAt = c.now()
	return c, nil
}

func (c *ContextWebInformation) FormDigest() string {
	return c.FormDigestValue
}

// ExpiresAt is the acquisition time plus the server supplied timeout.
func (c *ContextWebInformation) ExpiresAt() time.Time {
	return c.acquiredAt.Add(time.Duration(c.FormDigestTimeoutSeconds) * time.Second)
}

// IsUpToDate reports whether the digest can still be sent.
func (c *ContextWebInformation) IsUpToDate() bool {
	return c.now().Before(c.ExpiresAt())
}

// Web is a SharePoint site web.
type Web struct {
	Base `mapstructure:"-"`

	ID                uuid.UUID `mapstructure:"Id"`
	Title             string    `mapstructure:"Title"`
	Description       string    `mapstructure:"Description"`
	URL               string    `mapstructure:"Url"`
	ServerRelativeURL string    `mapstructure:"ServerRelativeUrl"`
	WebTemplate       string    `mapstructure:"WebTemplate"`
	Language          int       `mapstructure:"Language"`
	Created           time.Time `mapstructure:"Created"`
	LastItemModified  time.Time `mapstructure:"LastItemModifiedDate"`
}

func NewWeb(site *Site, data map[string]any) (*Web, error) {
	w := &Web{}
	if err := populate(site, "Web", data, &w.Base, w); err != nil {
		return nil, err
	}
	return w, nil
}

// List is a list or document library.
type List struct {
	Base `mapstructure:"-"`

	ID                 uuid.UUID `mapstructure:"Id"`
	Title              string    `mapstructure:"Title"`
	Description        string    `mapstructure:"Description"`
	BaseTemplate       int       `mapstructure:"BaseTemplate"`
	ItemCount          int       `mapstructure:"ItemCount"`
	Hidden             bool      `mapstructure:"Hidden"`
	EntityTypeName     string    `mapstructure:"EntityTypeName"`
	ListItemEntityType string    `mapstructure:"ListItemEntityTypeFullName"`
	Created            time.Time `mapstructure:"Created"`
	LastItemModified   time.Time `mapstructure:"LastItemModifiedDate"`
}

func NewList(site *Site, data map[string]any) (*List, error) {
	l := &List{}
	if err := populate(site, "List", data, &l.Base, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Items fetches the items of the list.
func (l *List) Items(ctx context.Context) ([]Object, error) {
	res, err := l.Property(ctx, "Items")
	if err != nil {
		return nil, err
	}
	return res.All(), nil
}

// ListItem is an item of a list. Its custom columns are only reachable
// through Get.
type ListItem struct {
	Base `mapstructure:"-"`

	ID       int       `mapstructure:"Id"`
	GUID     uuid.UUID `mapstructure:"GUID"`
	Title    string    `mapstructure:"Title"`
	Created  time.Time `mapstructure:"Created"`
	Modified time.Time `mapstructure:"Modified"`
	AuthorID int       `mapstructure:"AuthorId"`
	EditorID int       `mapstructure:"EditorId"`
}

func NewListItem(site *Site, data map[string]any) (*ListItem, error) {
	i := &ListItem{}
	if err := populate(site, "ListItem", data, &i.Base, i); err != nil {
		return nil, err
	}
	return i, nil
}

// Folder is a folder of a document library.
type Folder struct {
	Base `mapstructure:"-"`

	Name              string `mapstructure:"Name"`
	ServerRelativeURL string `mapstructure:"ServerRelativeUrl"`
	ItemCount         int    `mapstructure:"ItemCount"`
	WelcomePage       string `mapstructure:"WelcomePage"`
}

func NewFolder(site *Site, data map[string]any) (*Folder, error) {
	f := &Folder{}
	if err := populate(site, "Folder", data, &f.Base, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Files fetches the files directly inside the folder.
func (f *Folder) Files(ctx context.Context) ([]Object, error) {
	res, err := f.Property(ctx, "Files")
	if err != nil {
		return nil, err
	}
	return res.All(), nil
}

// Folders fetches the direct subfolders.
func (f *Folder) Folders(ctx context.Context) ([]Object, error) {
	res, err := f.Property(ctx, "Folders")
	if err != nil {
		return nil, err
	}
	return res.All(), nil
}

// File is a document stored in a library.
type File struct {
	Base `mapstructure:"-"`

	Name              string    `mapstructure:"Name"`
	Title             string    `mapstructure:"Title"`
	ServerRelativeURL string    `mapstructure:"ServerRelativeUrl"`
	Length            int64     `mapstructure:"Length"`
	UniqueID          uuid.UUID `mapstructure:"UniqueId"`
	ETag              string    `mapstructure:"ETag"`
	MajorVersion      int       `mapstructure:"MajorVersion"`
	MinorVersion      int       `mapstructure:"MinorVersion"`
	CheckOutType      int       `mapstructure:"CheckOutType"`
	TimeCreated       time.Time `mapstructure:"TimeCreated"`
	TimeLastModified  time.Time `mapstructure:"TimeLastModified"`
}

func NewFile(site *Site, data map[string]any) (*File, error) {
	f := &File{}
	if err := populate(site, "File", data, &f.Base, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Content downloads the file body.
func (f *File) Content(ctx context.Context) ([]byte, error) {
	if err := f.requireURI("download"); err != nil {
		return nil, err
	}
	res, err := f.site.Query(ctx, http.MethodGet, strings.TrimRight(f.metadata.URI, "/")+"/$value", nil, SkipDecode())
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
	}
	return res.Raw, nil
}

// User is a site user.
type User struct {
	Base `mapstructure:"-"`

	ID            int    `mapstructure:"Id"`
	LoginName     string `mapstructure:"LoginName"`
	Title         string `mapstructure:"Title"`
	Email         string `mapstructure:"Email"`
	IsSiteAdmin   bool   `mapstructure:"IsSiteAdmin"`
	PrincipalType int    `mapstructure:"PrincipalType"`
}

func NewUser(site *Site, data map[string]any) (*User, error) {
	u := &User{}
	if err := populate(site, "User", data, &u.Base, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Group is a site group.
type Group struct {
	Base `mapstructure:"-"`

	ID            int    `mapstructure:"Id"`
	LoginName     string `mapstructure:"LoginName"`
	Title         string `mapstructure:"Title"`
	Description   string `mapstructure:"Description"`
	OwnerTitle    string `mapstructure:"OwnerTitle"`
	PrincipalType int    `mapstructure:"PrincipalType"`
}

func NewGroup(site *Site, data map[string]any) (*Group, error) {
	g := &Group{}
	if err := populate(site, "Group", data, &g.Base, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Users fetches the members of the group.
func (g *Group) Users(ctx context.Context) ([]Object, error) {
	res, err := g.Property(ctx, "Users")
	if err != nil {
		return nil, err
	}
	return res.All(), nil
}

// Field is a list column.
type Field struct {
	Base `mapstructure:"-"`

	ID            uuid.UUID `mapstructure:"Id"`
	Title         string    `mapstructure:"Title"`
	InternalName  string    `mapstructure:"InternalName"`
	StaticName    string    `mapstructure:"StaticName"`
	TypeAsString  string    `mapstructure:"TypeAsString"`
	FieldTypeKind int       `mapstructure:"FieldTypeKind"`
	Required      bool      `mapstructure:"Required"`
	Hidden        bool      `mapstructure:"Hidden"`
	ReadOnlyField bool      `mapstructure:"ReadOnlyField"`
	DefaultValue  string    `mapstructure:"DefaultValue"`
	EnforceUnique bool      `mapstructure:"EnforceUniqueValues"`
	SchemaXML     string    `mapstructure:"SchemaXml"`
}

func NewField(site *Site, data map[string]any) (*Field, error) {
	f := &Field{}
	if err := populate(site, "Field", data, &f.Base, f); err != nil {
		return nil, err
	}
	return f, nil
}

// View is a list view.
type View struct {
	Base `mapstructure:"-"`

	ID                uuid.UUID `mapstructure:"Id"`
	Title             string    `mapstructure:"Title"`
	DefaultView       bool      `mapstructure:"DefaultView"`
	Hidden            bool      `mapstructure:"Hidden"`
	RowLimit          int       `mapstructure:"RowLimit"`
	ServerRelativeURL string    `mapstructure:"ServerRelativeUrl"`
	ViewQuery         string    `mapstructure:"ViewQuery"`
}

func NewView(site *Site, data map[string]any) (*View, error) {
	v := &View{}
	if err := populate(site, "View", data, &v.Base, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ContentType is a site or list content type. Its identifier is a hex
// string, not a GUID.
type ContentType struct {
	Base `mapstructure:"-"`

	StringID    string `mapstructure:"StringId"`
	Name        string `mapstructure:"Name"`
	Description string `mapstructure:"Description"`
	Group       string `mapstructure:"Group"`
	Hidden      bool   `mapstructure:"Hidden"`
	ReadOnly    bool   `mapstructure:"ReadOnly"`
	Sealed      bool   `mapstructure:"Sealed"`
}

func NewContentType(site *Site, data map[string]any) (*ContentType, error) {
	c := &ContentType{}
	if err := populate(site, "ContentType", data, &c.Base, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RoleDefinition is a permission level.
type RoleDefinition struct {
	Base `mapstructure:"-"`

	ID           int    `mapstructure:"Id"`
	Name         string `mapstructure:"Name"`
	Description  string `mapstructure:"Description"`
	Hidden       bool   `mapstructure:"Hidden"`
	Order        int    `mapstructure:"Order"`
	RoleTypeKind int    `mapstructure:"RoleTypeKind"`
}

func NewRoleDefinition(site *Site, data map[string]any) (*RoleDefinition, error) {
	r := &RoleDefinition{}
	if err := populate(site, "RoleDefinition", data, &r.Base, r); err != nil {
		return nil, err
	}
	return r, nil
}

// CollectionString is a typed Collection(Edm.String) value.
type CollectionString struct {
	Base `mapstructure:"-"`

	Values []string `mapstructure:"results"`
}

func NewCollectionString(site *Site, data map[string]any) (*CollectionString, error) {
	c := &CollectionString{}
	if err := populate(site, "CollectionString", data, &c.Base, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CollectionInteger is a typed Collection(Edm.Int32) value.
type CollectionInteger struct {
	Base `mapstructure:"-"`

	Values []int `mapstructure:"results"`
}

func NewCollectionInteger(site *Site, data map[string]any) (*CollectionInteger, error) {
	c := &CollectionInteger{}
	if err := populate(site, "CollectionInteger", data, &c.Base, c); err != nil {
		return nil, err
	}
	return c, nil
}
