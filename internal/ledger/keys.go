package ledger

// Keys of the zklink deployment log.
const (
	KeyDeployer   = "deployer"
	KeyGovernor   = "governor"
	KeyValidator  = "validator"
	KeyFeeAccount = "feeAccount"

	KeyGatekeeperClassHash = "gatekeeperClassHash"
	KeyVerifierClassHash   = "verifierClassHash"
	KeyZklinkClassHash     = "zkLinkClassHash"

	KeyVerifier         = "verifier"
	KeyVerifierVerified = "verifierVerified"

	KeyZklink            = "zkLink"
	KeyZklinkTxHash      = "zkLinkTxHash"
	KeyZklinkBlockNumber = "zkLinkBlockNumber"
	KeyZklinkVerified    = "zkLinkVerified"

	KeyGatekeeper         = "gatekeeper"
	KeyGatekeeperVerified = "gatekeeperVerified"

	KeyVerifierTransferMasterTxHash   = "verifiertransferMasterTxHash"
	KeyVerifierAddUpgradeableTxHash   = "verifierAddUpgradeableTxHash"
	KeyZklinkTransferMasterTxHash     = "zkLinktransferMasterTxHash"
	KeyZklinkAddUpgradeableTxHash     = "zkLinkAddUpgradeableTxHash"
	KeyGatekeeperTransferMasterTxHash = "gatekeepertransferMasterTxHash"
	KeyZklinkSetValidatorTxHash       = "zkLinkSetValidatorTxHash"

	// Classes staged by startUpgrade, cleared once the upgrade is finished.
	KeyVerifierUpgradeTarget = "verifierUpgradeTarget"
	KeyZklinkUpgradeTarget   = "zkLinkUpgradeTarget"
)

// Keys of the multicall deployment log.
const (
	KeyMulticallClassHash   = "multicallClassHash"
	KeyMulticall            = "multicall"
	KeyMulticallTxHash      = "multicallTxHash"
	KeyMulticallBlockNumber = "multicallBlockNumber"
	KeyMulticallVerified    = "multicallVerified"
)

// Keys of the faucet token deployment log. Deployed tokens are recorded per
// symbol, see FaucetTokenKey and FaucetTokenTxHashKey.
const (
	KeyFaucetTokenClassHash = "faucetTokenClassHash"
)

func FaucetTokenKey(symbol string) string {
	return symbol
}

func FaucetTokenTxHashKey(symbol string) string {
	return symbol + "TxHash"
}
