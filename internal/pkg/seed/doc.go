// Package seed holds the shared secret provisioned to this service.
//
// A Seed is 32 random bytes carried as 64 hexadecimal characters. The codec
// in this package is the only way to build one, so every Seed in the process
// has already passed shape validation. Decrypt turns an RSA-OAEP ciphertext
// into a Seed and deliberately reports every failure the same way.
package seed
