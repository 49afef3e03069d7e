// Package capsulevault provides a Go client SDK for CapsuleVault,
// a time-capsule system for encrypted, conditionally unlockable content.
//
// Content is encrypted client-side with XChaCha20-Poly1305, uploaded to a
// content-addressed store, and registered on a ledger together with its
// BLAKE3 content hash and an unlock condition: a wall-clock time, a
// multisig approval threshold, or a payment. Once the ledger reports the
// condition satisfied, the content can be retrieved, decrypted, and
// verified against the recorded hash.
//
// Basic usage:
//
//	client, err := capsulevault.New(
//	    capsulevault.WithWalletAddress("0xabc..."),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create a capsule that opens on 2027-01-01
//	result, err := client.CreateTimeCapsule(ctx, content, 1798761600000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("keep this key:", result.EncryptionKey)
//
//	// Later, once the unlock time has passed
//	unlocked, err := client.UnlockCapsule(ctx, result.CapsuleID,
//	    capsulevault.WithKey(result.EncryptionKey))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s\n", unlocked.Content)
//
// Capsules created with [WithWalletBinding] need no key at all: the key is
// derived from the wallet address, the capsule id, the unlock time, and a
// recorded salt, and is re-derived at unlock time.
package capsulevault
