package ntfsgo

import "io"

func (img *Image) clusterOffset(i int32) int64 {
	return int64(img.geom.DataStart) + int64(i)*int64(img.geom.ClusterSize)
}

// readCluster reads the first n bytes of cluster i into dst. n must not
// exceed the cluster size.
func (img *Image) readCluster(i int32, dst []byte, n int32) error {
	if n > img.geom.ClusterSize {
		return wrapErr(ErrClusterOverflow, "read %d bytes into %d-byte cluster", n, img.geom.ClusterSize)
	}

	if i < 0 || i >= img.geom.ClusterCount {
		return wrapErr(ErrDataOutOfBounds, "cluster %d (count=%d)", i, img.geom.ClusterCount)
	}

	return img.rawRead(img.clusterOffset(i), dst[:n])
}

// writeCluster writes the first n bytes of src into cluster i. n must not
// exceed the cluster size.
func (img *Image) writeCluster(i int32, src []byte, n int32) error {
	if n > img.geom.ClusterSize {
		return wrapErr(ErrClusterOverflow, "write %d bytes into %d-byte cluster", n, img.geom.ClusterSize)
	}

	if i < 0 || i >= img.geom.ClusterCount {
		return wrapErr(ErrDataOutOfBounds, "cluster %d (count=%d)", i, img.geom.ClusterCount)
	}

	return img.rawWrite(img.clusterOffset(i), src[:n])
}

// readClusters gathers n bytes from an ordered cluster list into dst,
// laying bytes out contiguously across clusters in list order; the last
// cluster used may be partially filled and any clusters beyond the used
// prefix are left untouched. n must not exceed clusterSize*len(clusters).
func (img *Image) readClusters(clusters []int32, dst []byte, n int32) error {
	if n > img.geom.ClusterSize*int32(len(clusters)) {
		return wrapErr(ErrClusterOverflow, "gather %d bytes across %d clusters", n, len(clusters))
	}

	remaining := n
	off := int32(0)

	for _, c := range clusters {
		if remaining <= 0 {
			break
		}

		chunk := minInt32(remaining, img.geom.ClusterSize)
		if err := img.readCluster(c, dst[off:off+chunk], chunk); err != nil {
			return err
		}

		off += chunk
		remaining -= chunk
	}

	return nil
}

// writeClusters scatters n bytes of src across an ordered cluster list,
// the mirror of readClusters.
func (img *Image) writeClusters(clusters []int32, src []byte, n int32) error {
	if n > img.geom.ClusterSize*int32(len(clusters)) {
		return wrapErr(ErrClusterOverflow, "scatter %d bytes across %d clusters", n, len(clusters))
	}

	remaining := n
	off := int32(0)

	for _, c := range clusters {
		if remaining <= 0 {
			break
		}

		chunk := minInt32(remaining, img.geom.ClusterSize)
		if err := img.writeCluster(c, src[off:off+chunk], chunk); err != nil {
			return err
		}

		off += chunk
		remaining -= chunk
	}

	return nil
}

// readClustersStream is the stream form of readClusters: it copies n
// bytes from the cluster list to w, one cluster at a time, chunked to
// min(remaining, clusterSize) per step.
func (img *Image) readClustersStream(clusters []int32, w io.Writer, n int64) error {
	buf := make([]byte, img.geom.ClusterSize)

	remaining := n
	idx := 0

	for remaining > 0 {
		if idx >= len(clusters) {
			return wrapErr(ErrClusterOverflow, "stream %d bytes across %d clusters", n, len(clusters))
		}

		chunk := int32(minInt64(remaining, int64(img.geom.ClusterSize)))
		if err := img.readCluster(clusters[idx], buf, chunk); err != nil {
			return err
		}

		if _, err := w.Write(buf[:chunk]); err != nil {
			return wrapErr(err, "write stream chunk")
		}

		remaining -= int64(chunk)
		idx++
	}

	return nil
}

// writeClustersStream is the stream form of writeClusters: it reads n
// bytes from r and scatters them across the cluster list, one cluster at
// a time.
func (img *Image) writeClustersStream(clusters []int32, r io.Reader, n int64) error {
	buf := make([]byte, img.geom.ClusterSize)

	remaining := n
	idx := 0

	for remaining > 0 {
		if idx >= len(clusters) {
			return wrapErr(ErrClusterOverflow, "stream %d bytes across %d clusters", n, len(clusters))
		}

		chunk := int32(minInt64(remaining, int64(img.geom.ClusterSize)))

		if _, err := io.ReadFull(r, buf[:chunk]); err != nil {
			return wrapErr(err, "read stream chunk")
		}

		if err := img.writeCluster(clusters[idx], buf, chunk); err != nil {
			return err
		}

		remaining -= int64(chunk)
		idx++
	}

	return nil
}

func minInt32(a, b int32) int32 {
	if a < b {
		return a
	}

	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}

	return b
}
