package disk

import (
	"github.com/copernet/copernicus/model/block"
	"github.com/copernet/copernicus/conf"

	"os"
	blogs "github.com/astaxie/beego/logs"
	"github.com/copernet/copernicus/log"

	"fmt"
	"github.com/copernet/copernicus/model/chainparams"
	"github.com/copernet/copernicus/model/pow"
	"github.com/copernet/copernicus/model/blockindex"
	"github.com/copernet/copernicus/model/utxo"
	"github.com/copernet/copernicus/persist"
	"github.com/copernet/copernicus/persist/blkdb"
	"github.com/copernet/copernicus/util"
	"bytes"
)

// FlushStateMode controls how much of the in-memory state FlushStateToDisk
// writes out: from nothing at all up to an unconditional full flush.
type FlushStateMode int

const (
	FlushStateNone FlushStateMode = iota
	FlushStatePeriodic
	FlushStateIfNeeded
	FlushStateAlways
)

// FindBlockPos reserves addSize bytes for a new block in the current (or,
// if it would overflow persist.MaxBlockFileSize, a freshly rolled) block
// file, filling in pos with the file number and byte offset to write at.
func FindBlockPos(pos *block.DiskBlockPos, addSize uint32, height int32, blockTime uint64, finalize bool) bool {
	gp := persist.GetInstance()
	nFile := gp.GlobalLastBlockFile

	ensureFileInfo(gp, nFile)
	info := gp.GlobalBlockFileInfo[nFile]

	if info.Size+addSize >= persist.MaxBlockFileSize {
		nFile++
		ensureFileInfo(gp, nFile)
		info = gp.GlobalBlockFileInfo[nFile]
		gp.GlobalLastBlockFile = nFile
	}

	pos.File = nFile
	pos.Pos = info.Size

	info.AddBlock(height, blockTime)
	info.Size += addSize
	gp.GlobalDirtyFileInfo[nFile] = true

	if finalize {
		log.Debug("FindBlockPos: finalized file %d at %d bytes", nFile, info.Size)
	}
	return true
}

func ensureFileInfo(gp *persist.PersistGlobal, file int32) {
	for int32(len(gp.GlobalBlockFileInfo)) <= file {
		fi := block.NewBlockFileInfo()
		gp.GlobalBlockFileInfo = append(gp.GlobalBlockFileInfo, fi)
	}
}

// WriteBlockToDisk serializes bl into the file/offset pos names, which must
// already have been reserved by FindBlockPos.
func WriteBlockToDisk(bl *block.Block, pos *block.DiskBlockPos) bool {
	file := OpenBlockFile(pos, false)
	if file == nil {
		log.Error("WriteBlockToDisk: OpenBlockFile failed for %s", pos.String())
		return false
	}
	defer file.Close()

	if _, err := file.Seek(int64(pos.Pos), 0); err != nil {
		log.Error("WriteBlockToDisk: seek to %d failed: %v", pos.Pos, err)
		return false
	}
	if err := bl.Serialize(file); err != nil {
		log.Error("WriteBlockToDisk: serialize failed: %v", err)
		return false
	}
	return true
}

// FlushStateToDisk writes every dirty block-file-info record and block
// index entry to the block tree DB and flushes the UTXO cache. mode is
// accepted for call-site symmetry with the teacher's flush scheduler
// (periodic/if-needed callers may skip flushing under memory pressure in a
// fuller implementation); this pass always performs a full flush.
func FlushStateToDisk(mode FlushStateMode, manualPruneHeight int) error {
	gp := persist.GetInstance()

	dirtyFiles := make(map[int32]*block.BlockFileInfo, len(gp.GlobalDirtyFileInfo))
	for file := range gp.GlobalDirtyFileInfo {
		dirtyFiles[file] = gp.GlobalBlockFileInfo[file]
	}

	dirtyIndexes := make([]*blockindex.BlockIndex, 0, len(gp.GlobalDirtyBlockIndex))
	for _, bi := range gp.GlobalDirtyBlockIndex {
		dirtyIndexes = append(dirtyIndexes, bi)
	}

	if len(dirtyFiles) > 0 || len(dirtyIndexes) > 0 {
		if err := blkdb.GetInstance().WriteBatchSync(dirtyFiles, int(gp.GlobalLastBlockFile), dirtyIndexes); err != nil {
			return err
		}
		gp.GlobalDirtyFileInfo = make(map[int32]bool)
		gp.GlobalDirtyBlockIndex = make(map[util.Hash]*blockindex.BlockIndex)
	}

	if !utxo.GetUtxoCacheInstance().Flush() {
		return fmt.Errorf("FlushStateToDisk: utxo cache flush failed")
	}
	return nil
}

func OpenBlockFile(pos *block.DiskBlockPos, fReadOnly bool) *os.File {
	return OpenDiskFile(*pos, "blk", fReadOnly)
}

func OpenUndoFile(pos block.DiskBlockPos, fReadOnly bool) *os.File {
	return OpenDiskFile(pos, "rev", fReadOnly)
}

func OpenDiskFile(pos block.DiskBlockPos, prefix string, fReadOnly bool) *os.File {
	if pos.IsNull() {
		return nil
	}
	path := GetBlockPosParentFilename()
	os.MkdirAll(path, os.ModePerm)

	file, err := os.Open(path + "rb+")
	if file == nil && !fReadOnly || err != nil {
		file, err = os.Open(path + "wb+")
		if err == nil {
			panic("open wb+ file failed ")
		}
	}
	if file == nil {
		blogs.Info("Unable to open file %s\n", path)
		return nil
	}
	if pos.Pos > 0 {
		if _, err := file.Seek(0, 1); err != nil {
			blogs.Info("Unable to seek to position %u of %s\n", pos.Pos, path)
			file.Close()
			return nil
		}
	}

	return file
}

func GetBlockPosFilename(pos block.DiskBlockPos, prefix string) string {
	return conf.GetDataPath() + "/blocks/" + fmt.Sprintf("%s%05d.dat", prefix, pos.File)
}

func GetBlockPosParentFilename() string {
	return conf.GetDataPath() + "/blocks/"
}


func ReadBlockFromDiskByPos(pos block.DiskBlockPos, param *chainparams.BitcoinParams) (*block.Block, bool) {
	// Open history file to read
	file := OpenBlockFile(&pos, true)
	if file == nil {
		blogs.Error("ReadBlockFromDisk: OpenBlockFile failed for %s", pos.String())
		return nil, false
	}

	// Read block
	blk := block.NewBlock()
	if err := blk.Unserialize(file); err != nil {
		blogs.Error("%s: Deserialize or I/O error - %s at %s", log.TraceLog(), err.Error(), pos.String())
	}

	// Check the header
	pow := pow.Pow{}
	if !pow.CheckProofOfWork(blk.GetHash(), blk.Header.Bits, param) {
		blogs.Error(fmt.Sprintf("ReadBlockFromDisk: Errors in block header at %s", pos.String()))
		return nil, false
	}
	return blk, true
}

func ReadBlockFromDisk(pindex *blockindex.BlockIndex, param *chainparams.BitcoinParams) (*block.Block, bool) {
	blk, ret := ReadBlockFromDiskByPos(pindex.GetBlockPos(), param)
	if !ret {
		return nil, false
	}
	hash := pindex.GetBlockHash()
	pos := pindex.GetBlockPos()
	if !bytes.Equal(blk.GetHash()[:], hash[:]) {
		blogs.Error(fmt.Sprintf("ReadBlockFromDisk(CBlock&, CBlockIndex*): GetHash()"+
			"doesn't match index for %s at %s", pindex.String(), pos.String()))
		return blk, false
	}
	return blk, true
}