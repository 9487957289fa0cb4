package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dudu/facerec/internal/face"
	"github.com/dudu/facerec/internal/imageio"
)

var facesCmd = &cobra.Command{
	Use:   "faces [image]",
	Short: "List the faces found in an image",
	Long: `Detect every face in an image and print its attributes. With --camera
a single frame is captured instead of reading a file.

--annotate and --camera need a binary built with the gocv tag.

Examples:
  facerec faces group.jpg
  facerec faces group.jpg --annotate out.png
  facerec faces --camera 0`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFaces,
}

func init() {
	rootCmd.AddCommand(facesCmd)

	facesCmd.Flags().String("annotate", "", "Write a copy of the image with face boxes to this path")
	facesCmd.Flags().Int("camera", -1, "Capture one frame from this camera device instead of reading a file")
}

func runFaces(cmd *cobra.Command, args []string) error {
	annotate := mustGetString(cmd, "annotate")
	cameraID := mustGetInt(cmd, "camera")

	if (len(args) == 0) == (cameraID < 0) {
		return fmt.Errorf("pass either an image path or --camera")
	}

	img, err := loadInput(args, cameraID)
	if err != nil {
		return err
	}

	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	infos, err := e.faces.GetFaces(cmd.Context(), img)
	if err != nil {
		return err
	}

	fmt.Printf("Faces found: %d\n", len(infos))
	for i, info := range infos {
		fmt.Println(describe(i, info))
	}

	if annotate == "" || len(infos) == 0 {
		return nil
	}

	regions, err := e.regions(img)
	if err != nil {
		return err
	}
	if err := imageio.Annotate(img, labels(regions, infos), annotate); err != nil {
		return err
	}
	fmt.Printf("Annotated image written to %s\n", annotate)
	return nil
}

func loadInput(args []string, cameraID int) (face.Image, error) {
	if len(args) == 1 {
		return imageio.Open(args[0])
	}

	cam, err := imageio.OpenCamera(cameraID, 1280, 720)
	if err != nil {
		return face.Image{}, err
	}
	defer cam.Close()
	return cam.Read()
}

// describe formats one face record
func describe(i int, info face.Info) string {
	return fmt.Sprintf("#%d gender=%s age=%d mask=%s index=%s/%d",
		i+1, info.Gender, info.Age, info.Mask, info.Index.Version(), info.Index.Len())
}

// labels pairs regions with records; extra regions on either side are dropped
func labels(regions []face.RelRect, infos []face.Info) []imageio.Label {
	n := min(len(regions), len(infos))
	out := make([]imageio.Label, n)
	for i := range n {
		out[i] = imageio.Label{
			Region: regions[i],
			Text:   fmt.Sprintf("#%d %s %d", i+1, infos[i].Gender, infos[i].Age),
		}
	}
	return out
}
