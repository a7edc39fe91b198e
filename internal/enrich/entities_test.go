package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findEntities(entities []Entity, kind string) []Entity {
	var out []Entity
	for _, e := range entities {
		if e.Type == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestDetectEntitiesBTWBeforeIBAN(t *testing.T) {
	// NL999999999B01 matches both the BTW shape and the broad IBAN shape;
	// it must be classified as VAT, never IBAN.
	entities := detectEntities("BTW nummer NL999999999B01 en rekening NL91ABNA0417164300")

	vats := findEntities(entities, EntityVAT)
	require.Len(t, vats, 1)
	assert.Equal(t, "NL999999999B01", vats[0].Value)

	ibans := findEntities(entities, EntityIBAN)
	require.Len(t, ibans, 1)
	assert.Equal(t, "NL91ABNA0417164300", ibans[0].Value)
}

func TestDetectEntitiesCreditCardMask(t *testing.T) {
	entities := detectEntities("Paid with card 4111 1111 1111 1234.")

	cards := findEntities(entities, EntityCard)
	require.Len(t, cards, 1)
	assert.Equal(t, "4111 1111 1111 1234", cards[0].Value)
	assert.Equal(t, "****-****-****-1234", cards[0].DisplayValue)
}

func TestDetectEntitiesSSNMask(t *testing.T) {
	entities := detectEntities("SSN: 123-45-6789")

	ssns := findEntities(entities, EntitySSN)
	require.Len(t, ssns, 1)
	assert.Equal(t, "123-45-6789", ssns[0].Value)
	assert.Equal(t, "***-**-6789", ssns[0].DisplayValue)
}

func TestDetectEntitiesRoutingNumberWindow(t *testing.T) {
	// Keyword within 20 chars on either side counts; a bare 9-digit number
	// does not.
	before := detectEntities("Routing: 021000021 for wires")
	assert.Len(t, findEntities(before, EntityRouting), 1)

	after := detectEntities("Use 021000021 (ABA) for wires")
	assert.Len(t, findEntities(after, EntityRouting), 1)

	bare := detectEntities("Order number 021000021 shipped today")
	assert.Empty(t, findEntities(bare, EntityRouting))

	far := detectEntities("021000021 xxxxxxxxxxxxxxxxxxxxxxxxxxxxxx routing")
	assert.Empty(t, findEntities(far, EntityRouting))
}

func TestDetectEntitiesIPv4OctetValidation(t *testing.T) {
	entities := detectEntities("Server at 192.0.2.17, bogus 300.1.2.3")

	ips := findEntities(entities, EntityIPv4)
	require.Len(t, ips, 1)
	assert.Equal(t, "192.0.2.17", ips[0].Value)
}

func TestDetectEntitiesDedupe(t *testing.T) {
	entities := detectEntities("Email a@b.com then a@b.com again, also a@b.com")
	assert.Len(t, findEntities(entities, EntityEmail), 1)
}

func TestDetectEntitiesSwiftAndEIN(t *testing.T) {
	entities := detectEntities("SWIFT DEUTDEFF500, EIN 12-3456789")
	assert.Len(t, findEntities(entities, EntitySwift), 1)
	assert.Len(t, findEntities(entities, EntityEIN), 1)
}

func TestDetectDatesRangeValidation(t *testing.T) {
	dates := detectDates("Due 12/31/2024, issued 2024-01-15, broken 13/32/2024, also 3 March 2024 and Jan 5, 2024")

	assert.Contains(t, dates, "12/31/2024")
	assert.Contains(t, dates, "2024-01-15")
	assert.Contains(t, dates, "3 March 2024")
	assert.Contains(t, dates, "Jan 5, 2024")
	assert.NotContains(t, dates, "13/32/2024")
}

func TestFilterIdentifiers(t *testing.T) {
	entities := []Entity{
		{Type: EntityIBAN, Value: "NL91ABNA0417164300"},
		{Type: EntityEmail, Value: "a@b.com"},
		{Type: EntityEIN, Value: "12-3456789"},
	}

	ids := filterIdentifiers(entities)
	require.Len(t, ids, 2)
	assert.Equal(t, EntityIBAN, ids[0].Type)
	assert.Equal(t, EntityEIN, ids[1].Type)
}
