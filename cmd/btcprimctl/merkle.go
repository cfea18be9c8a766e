package main

import (
	"encoding/hex"
	"strings"

	"github.com/btcprim/btcprim/merkle"
	"github.com/pkg/errors"
)

func merkleRoot(conf *merkleRootConfig, p *printer) error {
	tree, err := merkle.NewTreeFromBigEndianHex(conf.TxIDs)
	if err != nil {
		return err
	}
	p.printf("%s\n", tree.Root())
	p.dump(tree)
	return nil
}

func prove(conf *proveConfig, p *printer) error {
	tree, err := merkle.NewTreeFromBigEndianHex(conf.TxIDs)
	if err != nil {
		return err
	}
	proof, err := tree.GenerateMultiProof(conf.Indices)
	if err != nil {
		return err
	}
	return printProof(proof, conf.Binary, p)
}

func printProof(proof *merkle.MultiProof, binary bool, p *printer) error {
	if binary {
		serialized, err := proof.Bytes()
		if err != nil {
			return err
		}
		p.printf("%s\n", hexString(serialized))
	} else {
		err := p.printJSON(proof)
		if err != nil {
			return err
		}
	}
	p.dump(proof)
	return nil
}

func verify(conf *verifyConfig, p *printer) error {
	var proof *merkle.MultiProof
	if conf.Binary {
		serialized, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(conf.Proof), "0x"))
		if err != nil {
			return errors.Wrap(err, "proof is not valid hex")
		}
		proof, err = merkle.ParseMultiProof(serialized)
		if err != nil {
			return err
		}
	} else {
		data, err := readArgument(conf.Proof)
		if err != nil {
			return err
		}
		proof, err = merkle.ParseProofRecord(data)
		if err != nil {
			return err
		}
	}

	ok, err := proof.Verify()
	if err != nil {
		return err
	}
	p.dump(proof)
	if !ok {
		return errors.Errorf("proof of %d leaves doesn't match root %s",
			len(proof.TargetLeaves), proof.Root)
	}
	p.printf("proof of %d leaves matches root %s\n", len(proof.TargetLeaves), proof.Root)
	return nil
}
