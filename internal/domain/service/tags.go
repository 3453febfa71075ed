package service

import (
	"strings"

	"wallet-behavior-engine/internal/domain/entity"
	"wallet-behavior-engine/internal/infrastructure/logger"
)

// CounterpartyTag labels a known counterparty category
type CounterpartyTag string

const (
	TagExchange CounterpartyTag = "EXCHANGE"
	TagMixer    CounterpartyTag = "MIXER"
	TagMiner    CounterpartyTag = "MINER"
)

// TagDirectory holds known counterparty labels. Context-stage metrics consume
// interaction rates against these tables; operators extend them at runtime
// via AddTag.
type TagDirectory struct {
	tags   map[string]CounterpartyTag
	logger *logger.Logger
}

// NewTagDirectory creates a tag directory seeded with well-known addresses
func NewTagDirectory(logger *logger.Logger) *TagDirectory {
	d := &TagDirectory{
		tags:   make(map[string]CounterpartyTag),
		logger: logger.WithComponent("tag-directory"),
	}
	d.initializeKnownTags()
	return d
}

func (d *TagDirectory) initializeKnownTags() {
	// Exchange hot wallets
	d.tags["0x3f5ce5fbfe3e9af3971dd833d26ba9b5c936f0be"] = TagExchange // Binance
	d.tags["0xd551234ae421e3bcba99a0da6d736074f22192ff"] = TagExchange // Binance 2
	d.tags["0x71660c4005ba85c37ccec55d0c4493e66fe775d3"] = TagExchange // Coinbase
	d.tags["0x2910543af39aba0cd09dbb2d50200b3e800a63d2"] = TagExchange // Kraken
	d.tags["0x6cc5f688a315f3dc28a7781717a9a798a59fda7b"] = TagExchange // OKX

	// Mixing services
	d.tags["0x722122df12d4e14e13ac3b6895a86e84145b6967"] = TagMixer // Tornado Cash router
	d.tags["0x910cbd523d972eb0a6f4cae4618ad62622b39dbf"] = TagMixer // Tornado Cash 100 ETH
	d.tags["0xd90e2f925da726b50c4ed8d0fb90ad053324f31b"] = TagMixer // Tornado Cash proxy

	// Mining pools
	d.tags["0xea674fdde714fd979de3edf0f56aa9716b898ec8"] = TagMiner // Ethermine
	d.tags["0x829bd824b016326a401d083b33d092293333a830"] = TagMiner // F2Pool
	d.tags["0x52bc44d5378309ee2abf1539bf71de1b7d7be3b5"] = TagMiner // Nanopool
}

// AddTag registers or overrides the tag for an address
func (d *TagDirectory) AddTag(address string, tag CounterpartyTag) {
	d.tags[strings.ToLower(address)] = tag
}

// Tag returns the tag of an address, if known
func (d *TagDirectory) Tag(address string) (CounterpartyTag, bool) {
	tag, ok := d.tags[strings.ToLower(address)]
	return tag, ok
}

// InteractionRate is the fraction of a wallet's transactions whose
// counterparty carries the given tag
func (d *TagDirectory) InteractionRate(address string, txs []entity.Transaction, tag CounterpartyTag) float64 {
	if len(txs) == 0 {
		return 0
	}
	matched := 0
	for _, tx := range txs {
		counterparty := tx.To
		if counterparty == address || counterparty == "" {
			counterparty = tx.From
		}
		if counterparty == "" || counterparty == address {
			continue
		}
		if got, ok := d.Tag(counterparty); ok && got == tag {
			matched++
		}
	}
	return float64(matched) / float64(len(txs))
}
