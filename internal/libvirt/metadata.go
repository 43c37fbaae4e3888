package libvirt

import (
	"encoding/xml"
	"fmt"

	"github.com/google/uuid"

	"github.com/jbweber/verne/internal/resource"
)

// MetadataNamespace is the XML namespace of verne's domain metadata.
const MetadataNamespace = "https://github.com/jbweber/verne/v1"

// uuidNamespace seeds deterministic guest UUIDs.
var uuidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(MetadataNamespace))

// guestUUID returns the UUID a guest named name always gets, so that
// re-creating a template yields the same domain identity.
func guestUUID(name string) string {
	return uuid.NewSHA1(uuidNamespace, []byte(name)).String()
}

// verneMetadata is the custom element stored in a domain's <metadata>.
type verneMetadata struct {
	XMLName xml.Name      `xml:"verne:resource"`
	Xmlns   string        `xml:"xmlns:verne,attr"`
	Kind    resource.Kind `xml:"kind,attr"`
	Name    string        `xml:"name,attr"`
}

// metadataXML renders the metadata element for r.
func metadataXML(r resource.Resource) (string, error) {
	data, err := xml.Marshal(verneMetadata{
		Xmlns: MetadataNamespace,
		Kind:  r.Kind(),
		Name:  r.GetName(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return string(data), nil
}
