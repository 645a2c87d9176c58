package services

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/dmitrijs2005/datamarket/internal/common"
)

// ContentID returns the CIDv1 (raw codec, sha2-256) of data.
func ContentID(data []byte) (cid.Cid, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// parseCID decodes s and rejects anything that is not a valid CID.
func parseCID(s string) (cid.Cid, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: bad content identifier %q", common.ErrInvalidRequest, s)
	}
	return c, nil
}

func storageKey(c cid.Cid) string {
	return "content/" + c.String()
}
