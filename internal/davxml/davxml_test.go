package davxml

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	href string
	name string
}

func displayNames(r Response) (entry, bool) {
	name, ok := r.Get(DisplayName)
	if !ok {
		return entry{}, false
	}
	return entry{href: r.Href, name: name}, true
}

func TestDecodeMultiStatus_SkipsResponsesWithoutProperty(t *testing.T) {
	body := []byte(`<?xml version="1.0"?>
<d:multistatus xmlns:d="DAV:" xmlns:oc="http://owncloud.org/ns">
  <d:response>
    <d:href>/remote.php/dav/files/admin/a.txt</d:href>
    <d:propstat><d:prop><d:displayname>a.txt</d:displayname></d:prop><d:status>HTTP/1.1 200 OK</d:status></d:propstat>
  </d:response>
  <d:response>
    <d:href>/remote.php/dav/files/admin/noname</d:href>
    <d:propstat><d:prop><oc:fileid>12</oc:fileid></d:prop><d:status>HTTP/1.1 200 OK</d:status></d:propstat>
  </d:response>
  <d:response>
    <d:href>/remote.php/dav/files/admin/b.pdf</d:href>
    <d:propstat><d:prop><d:displayname>b.pdf</d:displayname></d:prop><d:status>HTTP/1.1 200 OK</d:status></d:propstat>
  </d:response>
</d:multistatus>`)

	got, err := DecodeMultiStatus(body, displayNames)
	require.NoError(t, err)
	assert.Equal(t, []entry{
		{href: "/remote.php/dav/files/admin/a.txt", name: "a.txt"},
		{href: "/remote.php/dav/files/admin/b.pdf", name: "b.pdf"},
	}, got)
}

func TestDecodeMultiStatus_IgnoresNotFoundPropstat(t *testing.T) {
	body := []byte(`<d:multistatus xmlns:d="DAV:" xmlns:oc="http://owncloud.org/ns">
  <d:response>
    <d:href>/remote.php/dav/files/admin/dir/</d:href>
    <d:propstat><d:prop><d:displayname>dir</d:displayname><d:resourcetype><d:collection/></d:resourcetype></d:prop><d:status>HTTP/1.1 200 OK</d:status></d:propstat>
    <d:propstat><d:prop><oc:fileid/></d:prop><d:status>HTTP/1.1 404 Not Found</d:status></d:propstat>
  </d:response>
</d:multistatus>`)

	got, err := DecodeMultiStatus(body, func(r Response) (Response, bool) { return r, true })
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, ok := got[0].Get(FileID)
	assert.False(t, ok, "property from a 404 propstat must read as absent")

	name, ok := got[0].Get(DisplayName)
	assert.True(t, ok)
	assert.Equal(t, "dir", name)
	assert.True(t, got[0].Contains(ResourceType, Collection))
}

func TestDecodeMultiStatus_SkipsMissingHref(t *testing.T) {
	body := []byte(`<multistatus xmlns="DAV:">
  <response><propstat><prop><displayname>orphan</displayname></prop></propstat></response>
  <response><href>/x</href><propstat><prop><displayname>x</displayname></prop></propstat></response>
</multistatus>`)

	got, err := DecodeMultiStatus(body, displayNames)
	require.NoError(t, err)
	assert.Equal(t, []entry{{href: "/x", name: "x"}}, got)
}

func TestDecodeMultiStatus_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not xml", "this is not xml"},
		{"truncated", `<d:multistatus xmlns:d="DAV:"><d:response>`},
		{"wrong root", `<d:error xmlns:d="DAV:"><d:message>nope</d:message></d:error>`},
		{"wrong namespace", `<multistatus xmlns="urn:other"></multistatus>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMultiStatus([]byte(tt.body), displayNames)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestEncodePropfind(t *testing.T) {
	body := EncodePropfind(DisplayName, FileID, Property{Space: "urn:custom", Local: "thing"})

	var parsed struct {
		XMLName xml.Name `xml:"DAV: propfind"`
		Prop    struct {
			Names []struct {
				XMLName xml.Name
			} `xml:",any"`
		} `xml:"DAV: prop"`
	}
	require.NoError(t, xml.Unmarshal(body, &parsed))

	var names []xml.Name
	for _, n := range parsed.Prop.Names {
		names = append(names, n.XMLName)
	}
	assert.Equal(t, []xml.Name{
		{Space: NamespaceDAV, Local: "displayname"},
		{Space: NamespaceOwnCloud, Local: "fileid"},
		{Space: "urn:custom", Local: "thing"},
	}, names)
}

func TestEncodeMultiStatus_Decodable(t *testing.T) {
	body, err := EncodeMultiStatus([]Response{
		NewResponse("/remote.php/dav/systemtags/").Set(DisplayName, ""),
		NewResponse("/remote.php/dav/systemtags/7").Set(TagDisplayName, "Mysticism").Set(TagID, "7"),
	})
	require.NoError(t, err)

	got, err := DecodeMultiStatus(body, func(r Response) (string, bool) {
		return r.Get(TagDisplayName)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mysticism"}, got)
}

func TestSuccessStatus(t *testing.T) {
	assert.True(t, successStatus(""))
	assert.True(t, successStatus("HTTP/1.1 200 OK"))
	assert.True(t, successStatus("HTTP/1.1 204 No Content"))
	assert.False(t, successStatus("HTTP/1.1 404 Not Found"))
	assert.False(t, successStatus("HTTP/1.1 abc"))
}
