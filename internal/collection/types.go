package collection

import (
	"net/http"

	"github.com/google/uuid"
)

// SchemaVersion is the canonical export schema for collections.
const SchemaVersion = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

type Info struct {
	ID            string
	Name          string
	Description   string
	SchemaVersion string
}

type ItemKind string

const (
	KindRequest ItemKind = "request"
	KindFolder  ItemKind = "folder"
)

type VariableType string

const (
	VariableDefault VariableType = "default"
	VariableSecret  VariableType = "secret"
)

type Variable struct {
	Key     string
	Value   string
	Type    VariableType
	Enabled bool
}

type AuthType string

const (
	AuthNone   AuthType = "noauth"
	AuthBearer AuthType = "bearer"
	AuthBasic  AuthType = "basic"
	AuthAPIKey AuthType = "apikey"
	AuthOAuth1 AuthType = "oauth1"
	AuthOAuth2 AuthType = "oauth2"
	AuthDigest AuthType = "digest"
	AuthHawk   AuthType = "hawk"
	AuthNTLM   AuthType = "ntlm"
	AuthJWT    AuthType = "jwt"
	AuthAWSV4  AuthType = "awsv4"
	AuthCustom AuthType = "custom"
)

// AuthTypes lists every supported scheme. Redaction tables and importers
// range over this so a new scheme cannot be half-wired.
var AuthTypes = []AuthType{
	AuthNone, AuthBearer, AuthBasic, AuthAPIKey, AuthOAuth1, AuthOAuth2,
	AuthDigest, AuthHawk, AuthNTLM, AuthJWT, AuthAWSV4, AuthCustom,
}

type Auth struct {
	Type   AuthType
	Params map[string]string
}

type BodyMode string

const (
	BodyNone       BodyMode = ""
	BodyRaw        BodyMode = "raw"
	BodyURLEncoded BodyMode = "urlencoded"
	BodyFile       BodyMode = "file"
)

type Body struct {
	Mode     BodyMode
	Raw      string
	FilePath string
	MimeType string
}

type Request struct {
	Method      string
	URL         string
	Headers     http.Header
	Body        Body
	Description string
}

type Event struct {
	Listen string
	Script []string
}

// Item is a folder or a request node. The union is closed on Kind: request
// items carry Request and never Children, folders carry Children and never
// Request. Validate enforces this.
type Item struct {
	ID       string
	Name     string
	Kind     ItemKind
	Request  *Request
	Auth     *Auth
	Events   []Event
	Children []*Item
}

type Collection struct {
	Info      Info
	Items     []*Item
	Variables []Variable
	Auth      *Auth
}

func NewID() string {
	return uuid.NewString()
}

func New(name string) *Collection {
	return &Collection{
		Info: Info{
			ID:            NewID(),
			Name:          name,
			SchemaVersion: SchemaVersion,
		},
	}
}

func NewRequestItem(name string, req *Request) *Item {
	return &Item{ID: NewID(), Name: name, Kind: KindRequest, Request: req}
}

func NewFolderItem(name string) *Item {
	return &Item{ID: NewID(), Name: name, Kind: KindFolder}
}
