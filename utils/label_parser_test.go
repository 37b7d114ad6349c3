package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractIdentityNormalizesUsername(t *testing.T) {
	text := "Ships To:\n  Jane Doe ( CoolBuyer99 )"

	id := ExtractIdentity(text)

	assert.True(t, id.Identified())
	assert.Equal(t, "coolbuyer99", id.Username)
	assert.Equal(t, "", id.FirstName, "shipping labels never carry a first name")
}

func TestExtractIdentitySkipsNewBuyerPlaceholder(t *testing.T) {
	text := "ships to:\n(new buyer!)\nJohn Smith (realuser)"

	id := ExtractIdentity(text)

	assert.Equal(t, "realuser", id.Username)
}

func TestExtractIdentityPickupOnlyFirstName(t *testing.T) {
	shipped := ExtractIdentity("Ships To:\nJane Doe (janed)")
	pickup := ExtractIdentity("Pickup To:\nJane Doe (janed)")

	assert.Equal(t, shipped.Username, pickup.Username)
	assert.Equal(t, "", shipped.FirstName)
	assert.Equal(t, "Jane Doe", pickup.FirstName)
}

func TestExtractIdentityNoMarker(t *testing.T) {
	id := ExtractIdentity("Order #1234\nSubtotal: $5.00")

	assert.False(t, id.Identified())
	assert.Equal(t, "", id.Username)
}

func TestParseAddressBlock(t *testing.T) {
	text := `Packing Slip
Subtotal: $20.00
Ships To:
Jane Doe (JaneD)
123 MAIN ST. Springfield. IL. 62704. US.`

	addr := ParseAddressBlock(text)

	assert.NotNil(t, addr)
	assert.Equal(t, "Jane Doe", addr.FullName)
	assert.Equal(t, "janed", addr.Username)
	assert.Equal(t, "123 Main St", addr.AddressLine1)
	assert.Equal(t, "", addr.AddressLine2)
	assert.Equal(t, "Springfield", addr.City)
	assert.Equal(t, "IL", addr.State)
	assert.Equal(t, "62704", addr.ZipCode)
	assert.Equal(t, "US", addr.Country)
}

func TestParseAddressBlockSuiteLine(t *testing.T) {
	text := `Ships To:
Bob Roe (bobr)
1 Oak Ave. Apt 12. Columbus. OH. 43004. US.`

	addr := ParseAddressBlock(text)

	assert.NotNil(t, addr)
	assert.Equal(t, "1 Oak Ave", addr.AddressLine1)
	assert.Equal(t, "Apt 12", addr.AddressLine2)
	assert.Equal(t, "Columbus", addr.City)
	assert.Equal(t, "OH", addr.State)
	assert.Equal(t, "43004", addr.ZipCode)
}

func TestParseAddressBlockSuiteNeedsSixSegments(t *testing.T) {
	// Segment two looks like a unit but only five segments remain, so it is
	// treated as the city.
	text := `Ships To:
Bob Roe (bobr)
1 Oak Ave. APT. Columbus. OH. 43004.`

	addr := ParseAddressBlock(text)

	assert.NotNil(t, addr)
	assert.Equal(t, "", addr.AddressLine2)
	assert.Equal(t, "Apt", addr.City)
	assert.Equal(t, "COLUMBUS", addr.State)
}

func TestParseAddressBlockTooFewSegments(t *testing.T) {
	text := `Ships To:
Jane Doe (janed)
Springfield. IL`

	assert.Nil(t, ParseAddressBlock(text))
}

func TestParseAddressBlockNoUsernameLine(t *testing.T) {
	assert.Nil(t, ParseAddressBlock("Packing Slip\nSubtotal: $5.00"))
}

func TestExtractSubtotalSumsAllMatches(t *testing.T) {
	text := `Item A
Subtotal: $10.00
Item B
subtotal: $5.50`

	assert.InDelta(t, 15.50, ExtractSubtotal(text), 0.001)
}

func TestExtractSubtotalNone(t *testing.T) {
	assert.Equal(t, 0.0, ExtractSubtotal("no amounts here"))
}

func TestPageClassification(t *testing.T) {
	assert.True(t, IsPickupPage("LOCAL PICKUP ORDER\nPickup Address:"))
	assert.True(t, IsPackingSlip("Packing Slip\nShips To:"))
	assert.False(t, IsPickupPage("Packing Slip\nShips To:"))

	// Both markers present: pickup takes precedence in the pipeline, which
	// checks IsPickupPage first.
	both := "Packing Slip\nPickup Address:"
	assert.True(t, IsPickupPage(both))
	assert.True(t, IsPackingSlip(both))
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "coolbuyer99", NormalizeUsername("  CoolBuyer99 "))
}

// Annotation requests are served concurrently, so title-casing must be safe
// when several goroutines hit it at once. Run with -race.
func TestTitleCaseConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				assert.Equal(t, "123 Main St", TitleCase("123 MAIN ST"))
				assert.Equal(t, "Jane Doe", TitleCase("jane doe"))
			}
		}()
	}
	wg.Wait()
}
