package farmer

import "github.com/melodot/melodot/crypto/signatures/ethereum"

// FarmerIDFromSigner derives a FarmerId from an account's ECDSA signer: the
// 32-byte Keccak256 hash of the account's Ethereum address.
func FarmerIDFromSigner(signer *ethereum.Signer) FarmerId {
	addr := signer.Address()
	return FarmerId(ethereum.HashRaw(addr.Bytes()))
}
