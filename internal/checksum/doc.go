// Package checksum fingerprints extracts while they stream into the
// database.
//
// A Reader hashes exactly the bytes the loader consumed, so the digest in a
// load report identifies the extract content that was committed, even if
// the file is replaced afterwards.
//
// # Example Usage
//
//	r := checksum.NewReader(file)
//	io.Copy(dst, r)
//	fmt.Println(r.Sum(), r.Size())
//
// # Thread Safety
//
// A Reader is not safe for concurrent use; Sum and Size must be called after
// the reader's consumer is done with it.
package checksum
