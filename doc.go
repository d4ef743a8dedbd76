// Package hexzone turns polygon boundaries into compact sets of H3 cells and
// answers membership, containment and overlap queries against them.
//
// A region is generated once from GeoJSON: its polygons are filled with
// cells of one resolution, complete sibling families are replaced by their
// parent, and the resulting compacted set is persisted as a compressed
// stream of 8-byte cell ids. Queries read those sets back into transient
// prefix trees.
//
// # Quick Start
//
//	ctx := context.Background()
//	client := hexzone.New(blobstore.NewLocalStore("./zones"))
//
//	f, _ := os.Open("de.geojson")
//	set, _ := client.GenerateRegion(ctx, f, "de.h3idz", 7)
//
//	report, _ := client.Overlaps(ctx, []string{"de.h3idz", "fr.h3idz"})
//	if !report.Empty() {
//	    // regions share cells
//	}
//
// Cloud storage:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("zones/"))
//	client := hexzone.New(store, hexzone.WithCompression(codec.Zstd))
//
// # Operations
//
//   - GenerateRegion: GeoJSON → rasterize → compact → cell set artifact
//   - ExportRegion: cell set artifact → leaf cover at a resolution → GeoJSON
//   - Find: which cell sets below a prefix contain (or intersect) given cells
//   - Overlaps: every pair of related cells between named cell sets
//   - Lookup: the first named cell set containing a cell
//   - GenerateCountries / FindCountries: cell → ISO country code maps
//
// # Packages
//
// The building blocks are usable on their own: cell (the H3 cell model),
// cellset (compaction), hextree (collapse-aware cell maps), overlap (pairwise
// overlap detection), codec (binary artifact streams), geo (GeoJSON and
// rasterization) and blobstore (local, in-memory, S3 and MinIO storage).
package hexzone
