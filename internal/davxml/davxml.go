// Package davxml encodes PROPFIND request bodies and decodes WebDAV
// multi-status (207) response bodies.
//
// Only properties reported inside a 2xx propstat are visible to callers.
// Nextcloud lists properties it cannot provide in a separate 404 propstat
// (often as empty elements), and those must read as absent rather than empty.
package davxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Namespaces used by Nextcloud WebDAV endpoints.
const (
	NamespaceDAV       = "DAV:"
	NamespaceOwnCloud  = "http://owncloud.org/ns"
	NamespaceNextcloud = "http://nextcloud.org/ns"
)

// ErrMalformed is returned when a body is not a well-formed DAV multistatus
// document.
var ErrMalformed = errors.New("malformed multistatus response")

// Property names a WebDAV property by namespace and local name.
type Property struct {
	Space string
	Local string
}

// Well-known properties.
var (
	DisplayName    = Property{NamespaceDAV, "displayname"}
	ContentLength  = Property{NamespaceDAV, "getcontentlength"}
	ContentType    = Property{NamespaceDAV, "getcontenttype"}
	LastModified   = Property{NamespaceDAV, "getlastmodified"}
	ResourceType   = Property{NamespaceDAV, "resourcetype"}
	Collection     = Property{NamespaceDAV, "collection"}
	FileID         = Property{NamespaceOwnCloud, "fileid"}
	TagID          = Property{NamespaceOwnCloud, "id"}
	TagDisplayName = Property{NamespaceOwnCloud, "display-name"}
	UserVisible    = Property{NamespaceOwnCloud, "user-visible"}
	UserAssignable = Property{NamespaceOwnCloud, "user-assignable"}
)

func (p Property) String() string {
	return "{" + p.Space + "}" + p.Local
}

// name returns the prefixed element name used when encoding. Properties in
// namespaces without a declared prefix keep their namespace on the element.
func (p Property) name() xml.Name {
	switch p.Space {
	case NamespaceDAV:
		return xml.Name{Local: "d:" + p.Local}
	case NamespaceOwnCloud:
		return xml.Name{Local: "oc:" + p.Local}
	case NamespaceNextcloud:
		return xml.Name{Local: "nc:" + p.Local}
	default:
		return xml.Name{Space: p.Space, Local: p.Local}
	}
}

type propfindBody struct {
	XMLName xml.Name  `xml:"d:propfind"`
	DAV     string    `xml:"xmlns:d,attr"`
	OC      string    `xml:"xmlns:oc,attr"`
	NC      string    `xml:"xmlns:nc,attr"`
	Prop    propNames `xml:"d:prop"`
}

type propNames struct {
	Names []emptyElement
}

type emptyElement struct {
	XMLName xml.Name
}

// EncodePropfind builds a PROPFIND request body asking for props.
func EncodePropfind(props ...Property) []byte {
	body := propfindBody{
		DAV: NamespaceDAV,
		OC:  NamespaceOwnCloud,
		NC:  NamespaceNextcloud,
	}
	for _, p := range props {
		body.Prop.Names = append(body.Prop.Names, emptyElement{XMLName: p.name()})
	}
	out, err := xml.Marshal(body)
	if err != nil {
		// Only element names are marshalled and all of them are static.
		panic("davxml: encode propfind: " + err.Error())
	}
	return append([]byte(xml.Header), out...)
}

// Response is one resource of a multistatus document.
type Response struct {
	Href  string
	props map[Property]value
}

type value struct {
	text     string
	children []Property
}

// NewResponse returns an empty response for href.
func NewResponse(href string) Response {
	return Response{Href: href, props: make(map[Property]value)}
}

// Set records a text property on the response.
func (r Response) Set(p Property, text string) Response {
	r.props[p] = value{text: text}
	return r
}

// Get returns the trimmed text of p and whether the server reported it.
func (r Response) Get(p Property) (string, bool) {
	v, ok := r.props[p]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v.text), true
}

// Contains reports whether property p holds a child element named child,
// e.g. Contains(ResourceType, Collection) for directories.
func (r Response) Contains(p, child Property) bool {
	v, ok := r.props[p]
	if !ok {
		return false
	}
	for _, c := range v.children {
		if c == child {
			return true
		}
	}
	return false
}

type multistatus struct {
	XMLName   xml.Name      `xml:"DAV: multistatus"`
	Responses []rawResponse `xml:"DAV: response"`
}

type rawResponse struct {
	Href      string        `xml:"DAV: href"`
	Propstats []rawPropstat `xml:"DAV: propstat"`
}

type rawPropstat struct {
	Prop   rawProps `xml:"DAV: prop"`
	Status string   `xml:"DAV: status"`
}

type rawProps struct {
	Values []rawValue `xml:",any"`
}

type rawValue struct {
	XMLName  xml.Name
	Text     string     `xml:",chardata"`
	Children []rawChild `xml:",any"`
}

type rawChild struct {
	XMLName xml.Name
}

// DecodeMultiStatus parses a multistatus body and maps every response through
// extract. Responses without an href, and responses for which extract returns
// false, are skipped.
func DecodeMultiStatus[T any](body []byte, extract func(Response) (T, bool)) ([]T, error) {
	var ms multistatus
	if err := xml.Unmarshal(body, &ms); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := make([]T, 0, len(ms.Responses))
	for _, raw := range ms.Responses {
		href := strings.TrimSpace(raw.Href)
		if href == "" {
			continue
		}
		resp := NewResponse(href)
		for _, ps := range raw.Propstats {
			if !successStatus(ps.Status) {
				continue
			}
			for _, v := range ps.Prop.Values {
				val := value{text: v.Text}
				for _, c := range v.Children {
					val.children = append(val.children, Property{c.XMLName.Space, c.XMLName.Local})
				}
				resp.props[Property{v.XMLName.Space, v.XMLName.Local}] = val
			}
		}
		if item, ok := extract(resp); ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// successStatus reports whether a propstat status line ("HTTP/1.1 200 OK")
// is 2xx. A missing status is treated as success.
func successStatus(status string) bool {
	fields := strings.Fields(status)
	if len(fields) < 2 {
		return true
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return false
	}
	return code >= 200 && code < 300
}

type multistatusOut struct {
	XMLName   xml.Name      `xml:"d:multistatus"`
	DAV       string        `xml:"xmlns:d,attr"`
	OC        string        `xml:"xmlns:oc,attr"`
	NC        string        `xml:"xmlns:nc,attr"`
	Responses []responseOut `xml:"d:response"`
}

type responseOut struct {
	Href     string      `xml:"d:href"`
	Propstat propstatOut `xml:"d:propstat"`
}

type propstatOut struct {
	Prop   propValuesOut `xml:"d:prop"`
	Status string        `xml:"d:status"`
}

type propValuesOut struct {
	Values []valueOut
}

type valueOut struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

// EncodeMultiStatus renders responses as a 207 body with every property in a
// single 200 propstat. Responses without properties get an empty propstat.
func EncodeMultiStatus(responses []Response) ([]byte, error) {
	ms := multistatusOut{
		DAV: NamespaceDAV,
		OC:  NamespaceOwnCloud,
		NC:  NamespaceNextcloud,
	}
	for _, r := range responses {
		out := responseOut{Href: r.Href, Propstat: propstatOut{Status: "HTTP/1.1 200 OK"}}
		for p, v := range r.props {
			out.Propstat.Prop.Values = append(out.Propstat.Prop.Values, valueOut{XMLName: p.name(), Text: v.text})
		}
		ms.Responses = append(ms.Responses, out)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(ms); err != nil {
		return nil, fmt.Errorf("encode multistatus: %w", err)
	}
	return buf.Bytes(), nil
}
