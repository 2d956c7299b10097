package store

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/qinglongcn/tze"
)

var (
	tzeOutPrefix = []byte("tzeout-") // 键值前缀
)

var (
	// ErrNotFound 未找到对应的未花费 TZE 输出
	ErrNotFound = errors.New("tze output not found")
	// ErrAlreadyExists 相同 OutPoint 的输出已经存在
	ErrAlreadyExists = errors.New("tze output already exists")
)

// UTXOSet 代表未花费的 TZE 输出集合，以 OutPoint 为键保存在 badger 中
type UTXOSet struct {
	db *badger.DB
}

// Open 打开（或创建）位于 path 的 UTXO 集合
func Open(path string) (*UTXOSet, error) {
	opts := badger.DefaultOptions(path) // 设置 Badger 数据库选项
	opts.ValueDir = path
	opts.Logger = nil
	return open(opts)
}

// OpenInMemory 打开一个仅在内存中的 UTXO 集合，主要用于测试
func OpenInMemory() (*UTXOSet, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*UTXOSet, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开 TZE UTXO 数据库失败: %w", err)
	}
	return &UTXOSet{db: db}, nil
}

// Close 关闭数据库
func (u *UTXOSet) Close() error {
	return u.db.Close()
}

// outKey 由前缀与编码后的 OutPoint 组成
func outKey(op tze.OutPoint) []byte {
	var buf bytes.Buffer
	buf.Write(tzeOutPrefix)
	if err := tze.WriteOutPoint(&buf, op); err != nil {
		logrus.Panic(err)
	}
	return buf.Bytes()
}

// Put 保存一个未花费输出
func (u *UTXOSet) Put(op tze.OutPoint, out tze.TzeOut) error {
	return u.db.Update(func(txn *badger.Txn) error {
		return putOut(txn, op, out)
	})
}

func putOut(txn *badger.Txn, op tze.OutPoint, out tze.TzeOut) error {
	key := outKey(op)
	if _, err := txn.Get(key); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, op)
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}

	var buf bytes.Buffer
	if err := tze.WriteTzeOut(&buf, out); err != nil {
		return err
	}
	return txn.Set(key, buf.Bytes())
}

// FetchTzeOut 查找 op 对应的未花费输出
func (u *UTXOSet) FetchTzeOut(op tze.OutPoint) (tze.TzeOut, error) {
	var out tze.TzeOut
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = getOut(txn, op)
		return err
	})
	return out, err
}

func getOut(txn *badger.Txn, op tze.OutPoint) (tze.TzeOut, error) {
	item, err := txn.Get(outKey(op))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return tze.TzeOut{}, fmt.Errorf("%w: %s", ErrNotFound, op)
	}
	if err != nil {
		return tze.TzeOut{}, err
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return tze.TzeOut{}, err
	}
	return tze.ReadTzeOut(bytes.NewReader(v))
}

// Spend 删除 op 对应的输出并返回它
func (u *UTXOSet) Spend(op tze.OutPoint) (tze.TzeOut, error) {
	var out tze.TzeOut
	err := u.db.Update(func(txn *badger.Txn) error {
		var err error
		if out, err = getOut(txn, op); err != nil {
			return err
		}
		return txn.Delete(outKey(op))
	})
	return out, err
}

// Apply 在一个数据库事务中应用交易的 TZE 捆绑包：花费全部输入引用的输出，并以 (txid, 索引) 保存新输出
// 任何一个输入引用的输出不存在时，整个捆绑包都不会被应用。
func (u *UTXOSet) Apply(txid chainhash.Hash, bundle *tze.Bundle[tze.AuthData]) error {
	if bundle.IsEmpty() {
		return nil
	}

	err := u.db.Update(func(txn *badger.Txn) error {
		for _, in := range bundle.Vin {
			if _, err := getOut(txn, in.PrevOut); err != nil {
				return err
			}
			if err := txn.Delete(outKey(in.PrevOut)); err != nil {
				return err
			}
		}
		for i, out := range bundle.Vout {
			if err := putOut(txn, tze.NewOutPoint(&txid, uint32(i)), out); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logrus.Errorf("[Apply] 应用交易 %s 失败:\t%v", txid, err)
		return err
	}

	logrus.Debugf("[Apply] 交易 %s 花费 %d 个 TZE 输出，创建 %d 个 TZE 输出", txid, len(bundle.Vin), len(bundle.Vout))
	return nil
}

// FindByExtension 返回受指定扩展守卫的全部未花费输出
func (u *UTXOSet) FindByExtension(extensionID uint32) (map[tze.OutPoint]tze.TzeOut, error) {
	outs := make(map[tze.OutPoint]tze.TzeOut)

	err := u.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		// 使用前缀来查找所有相关的 TZE 输出
		for it.Seek(tzeOutPrefix); it.ValidForPrefix(tzeOutPrefix); it.Next() {
			item := it.Item()
			k := bytes.TrimPrefix(item.KeyCopy(nil), tzeOutPrefix)
			op, err := tze.ReadOutPoint(bytes.NewReader(k))
			if err != nil {
				return err
			}

			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out, err := tze.ReadTzeOut(bytes.NewReader(v))
			if err != nil {
				return err
			}

			if out.Precondition.ExtensionID == extensionID {
				outs[op] = out
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outs, nil
}

// Count 返回未花费输出的数量
func (u *UTXOSet) Count() (int, error) {
	count := 0
	err := u.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		// 要启用仅可以用键迭代，需要将 IteratorOptions.PrefetchValues 字段设置为 false
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(tzeOutPrefix); it.ValidForPrefix(tzeOutPrefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
