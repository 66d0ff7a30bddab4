package starknet

import (
	"github.com/NethermindEth/juno/core/crypto"
	"github.com/NethermindEth/juno/core/felt"
)

// DefaultUDCAddress is the universal deployer contract shared by public networks and devnet.
const DefaultUDCAddress = "0x041a78e741e5af2fec34b695679bc6891742439f7afb8484ecd7766661ad02bf"

const udcEntryPoint = "deployContract"

var contractAddressPrefix = new(felt.Felt).SetBytes([]byte("STARKNET_CONTRACT_ADDRESS"))

// ContractAddress computes the address a deployment will land at.
func ContractAddress(callerAddress, classHash, salt *felt.Felt, constructorCallData []*felt.Felt) *felt.Felt {
	return crypto.PedersenArray(
		contractAddressPrefix,
		callerAddress,
		salt,
		classHash,
		crypto.PedersenArray(constructorCallData...),
	)
}

// udcCalldata lays out deployContract(class_hash, salt, unique, calldata).
// Deployments are never unique, so the resulting address does not depend on
// the deploying account.
func udcCalldata(classHash, salt *felt.Felt, constructorArgs []*felt.Felt) []*felt.Felt {
	calldata := make([]*felt.Felt, 0, 4+len(constructorArgs))
	calldata = append(calldata,
		classHash,
		salt,
		new(felt.Felt),
		new(felt.Felt).SetUint64(uint64(len(constructorArgs))),
	)
	return append(calldata, constructorArgs...)
}
