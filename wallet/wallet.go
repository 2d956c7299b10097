package wallet

import (
	"crypto/sha512"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip32"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// pbkdf2 迭代次数
	iterations = 4096
	// 派生出的种子长度，bip32 要求 16 到 64 字节
	seedLen = 64
	// 盐的固定前缀
	saltPrefix = "TZE"
)

// ErrEmptyMnemonic 助记词为空
var ErrEmptyMnemonic = errors.New("助记词不能为空")

// Wallet 由助记词与密码派生出的分层确定性钱包
type Wallet struct {
	master *bip32.Key
}

// NewWallet 使用 PBKDF2 从助记词与密码生成种子，再以该种子创建 bip32 主密钥
func NewWallet(mnemonic, password []byte) (*Wallet, error) {
	if len(mnemonic) == 0 {
		return nil, ErrEmptyMnemonic
	}

	salt := append([]byte(saltPrefix), password...)
	// 使用 PBKDF2 生成强密钥
	seed := pbkdf2.Key(mnemonic, salt, iterations, seedLen, sha512.New)

	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("生成主密钥失败: %w", err)
	}
	return &Wallet{master: master}, nil
}

// PrivateKey 派生第 index 个子私钥
func (w *Wallet) PrivateKey(index uint32) (*btcec.PrivateKey, error) {
	child, err := w.master.NewChildKey(index)
	if err != nil {
		return nil, fmt.Errorf("派生子密钥 %d 失败: %w", index, err)
	}
	priv, _ := btcec.PrivKeyFromBytes(child.Key)
	return priv, nil
}

// Address 返回第 index 个子密钥对应的 P2PKH 地址
func (w *Wallet) Address(index uint32, params *chaincfg.Params) (btcutil.Address, error) {
	priv, err := w.PrivateKey(index)
	if err != nil {
		return nil, err
	}
	return AddressFromPubKey(priv.PubKey(), params)
}

// AddressFromPubKey 将公钥转换为 P2PKH 地址
func AddressFromPubKey(pub *btcec.PublicKey, params *chaincfg.Params) (btcutil.Address, error) {
	// 对压缩公钥做 RIPEMD160(SHA256(pubKey))
	pubKeyHash := btcutil.Hash160(pub.SerializeCompressed())
	return btcutil.NewAddressPubKeyHash(pubKeyHash, params)
}
