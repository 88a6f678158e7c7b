package lmerkleroot

import (
	"github.com/copernet/copernicus/model/tx"
	"github.com/copernet/copernicus/util"
)

// merkleComputation implements a constant-space merkle root/path calculator,
// limited to 2^32 leaves.
func merkleComputation(leaves []util.Hash, root *util.Hash, pmutated *bool, branchPos uint32, pbranch *[]util.Hash) {
	if pbranch != nil {
		*pbranch = (*pbranch)[:0]
	}
	if len(leaves) == 0 {
		if pmutated != nil {
			*pmutated = false
		}
		if root != nil {
			*root = util.Hash{}
		}
		return
	}
	mutated := false
	// count is the number of leaves processed so far.
	count := uint32(0)
	// inner is an array of eagerly computed subtree hashes, indexed by tree
	// level (0 being the leaves).
	var inner [32]util.Hash
	// Which position in inner is a hash that depends on the matching leaf.
	matchLevel := -1
	for int(count) < len(leaves) {
		h := leaves[count]
		match := count == branchPos
		count++
		level := 0
		for ; (count & (uint32(1) << uint(level))) == 0; level++ {
			if pbranch != nil {
				if match {
					*pbranch = append(*pbranch, inner[level])
				} else if matchLevel == level {
					*pbranch = append(*pbranch, h)
					match = true
				}
			}
			if inner[level].IsEqual(&h) {
				mutated = true
			}
			tmp := make([]byte, 0, util.Hash256Size*2)
			tmp = append(tmp, inner[level][:]...)
			tmp = append(tmp, h[:]...)
			h = util.DoubleSha256Hash(tmp)
		}
		inner[level] = h
		if match {
			matchLevel = level
		}
	}
	// Final sweep over the rightmost branch of the tree to process odd
	// levels and reduce everything to a single top value.
	level := 0
	for ; (count & (uint32(1) << uint(level))) == 0; level++ {
	}
	h := inner[level]
	isMatched := matchLevel == level
	for count != (uint32(1) << uint(level)) {
		// h is an inner value that is not the top; combine it with itself
		// (the chain's special rule for odd levels in the tree).
		if pbranch != nil && isMatched {
			*pbranch = append(*pbranch, h)
		}
		tmp := make([]byte, 0, util.Hash256Size*2)
		tmp = append(tmp, h[:]...)
		tmp = append(tmp, h[:]...)
		h = util.DoubleSha256Hash(tmp)
		count += uint32(1) << uint(level)
		level++
		for ; (count & (uint32(1) << uint(level))) == 0; level++ {
			if pbranch != nil {
				if isMatched {
					*pbranch = append(*pbranch, inner[level])
				} else if matchLevel == level {
					*pbranch = append(*pbranch, h)
					isMatched = true
				}
			}
			tmp := make([]byte, 0, util.Hash256Size*2)
			tmp = append(tmp, inner[level][:]...)
			tmp = append(tmp, h[:]...)
			h = util.DoubleSha256Hash(tmp)
		}
	}
	if pmutated != nil {
		*pmutated = mutated
	}
	if root != nil {
		*root = h
	}
}

// ComputeMerkleRoot returns the merkle root over leaves and reports in
// mutated whether any two adjacent subtrees hashed identically (CVE-2012-2459
// merkle malleability).
func ComputeMerkleRoot(leaves []util.Hash, mutated *bool) util.Hash {
	var hash util.Hash
	merkleComputation(leaves, &hash, mutated, 0xffffffff, nil)
	return hash
}

// ComputeMerkleBranch returns the merkle authentication path for the leaf at
// position.
func ComputeMerkleBranch(leaves []util.Hash, position uint32) []util.Hash {
	var ret []util.Hash
	merkleComputation(leaves, nil, nil, position, &ret)
	return ret
}

// ComputeMerkleRootFromBranch recomputes a merkle root given a leaf hash, its
// authentication branch, and its index in the tree.
func ComputeMerkleRootFromBranch(leaf *util.Hash, branch []util.Hash, index uint32) util.Hash {
	hash := *leaf
	for i := 0; i < len(branch); i++ {
		tmp := make([]byte, 0, util.Hash256Size*2)
		if (index & 1) == 1 {
			tmp = append(tmp, branch[i][:]...)
			tmp = append(tmp, hash[:]...)
		} else {
			tmp = append(tmp, hash[:]...)
			tmp = append(tmp, branch[i][:]...)
		}
		hash = util.DoubleSha256Hash(tmp)
		index >>= 1
	}
	return hash
}

// BlockMerkleRoot computes the merkle root over a block's transactions.
func BlockMerkleRoot(txs []*tx.Tx, mutated *bool) util.Hash {
	leaves := make([]util.Hash, len(txs))
	for i := 0; i < len(txs); i++ {
		leaves[i] = txs[i].GetHash()
	}
	return ComputeMerkleRoot(leaves, mutated)
}

// BlockMerkleBranch computes the merkle authentication branch for the
// transaction at position within the block.
func BlockMerkleBranch(txs []*tx.Tx, position uint32) []util.Hash {
	leaves := make([]util.Hash, len(txs))
	for i := 0; i < len(txs); i++ {
		leaves[i] = txs[i].GetHash()
	}
	return ComputeMerkleBranch(leaves, position)
}

// HashMerkleBranches combines two adjacent merkle tree nodes.
func HashMerkleBranches(left *util.Hash, right *util.Hash) *util.Hash {
	var hash [util.Hash256Size * 2]byte
	copy(hash[:util.Hash256Size], left[:])
	copy(hash[util.Hash256Size:], right[:])

	newHash := util.DoubleSha256Hash(hash[:])
	return &newHash
}
