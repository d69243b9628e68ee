package config

import "github.com/spf13/viper"

// setDefaults sets the built-in defaults, pointing at public XRPL
// mainnet endpoints.
func setDefaults(v *viper.Viper) {
	v.SetDefault("node.url", "wss://s1.ripple.com/")
	v.SetDefault("node.connect_timeout", "10s")

	v.SetDefault("explorer.base_url", "https://xrpscan.com/tx")

	v.SetDefault("market.url",
		"https://api.coingecko.com/api/v3/simple/price?ids=ripple&vs_currencies=usd&include_24hr_change=true")
	v.SetDefault("market.fetch_timeout", "10s")

	v.SetDefault("history.limit", 10)

	// 12 drops is the long-standing open-ledger base fee.
	v.SetDefault("submit.fee_drops", 12)
	v.SetDefault("submit.validation_window", "20s")
	v.SetDefault("submit.ledger_window", 20)
}
